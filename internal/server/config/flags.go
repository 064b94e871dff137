package config

import (
	"flag"
	"io"
	"time"

	"github.com/businessinrwanda/marketplace/internal/flagx"
)

// flagNames lists the short flags owned by the server config.
var flagNames = []string{"-a", "-g", "-d", "-r", "-s", "-t", "-e", "-l", "-b", "-p"}

// parseFlags overlays command-line flags onto config.
//
//	-a string   HTTP bind address (":8080")
//	-g string   gRPC health bind address (":50051")
//	-d string   PostgreSQL DSN
//	-r string   Redis URL; empty disables the claim cache
//	-s string   identity token secret
//	-t int      session validity, minutes
//	-e string   environment (development|production)
//	-l string   log level
//	-b string   S3 bucket
//	-p string   claim duplicates policy (allow|reject)
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "http address")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "grpc health address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RedisURL, "r", config.RedisURL, "redis URL")
	fs.StringVar(&config.IdentitySecret, "s", config.IdentitySecret, "identity token secret")
	sessionMinutes := fs.Int("t", int(config.SessionTTL.Minutes()), "session validity (in minutes)")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.ClaimDuplicates, "p", config.ClaimDuplicates, "claim duplicates policy")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*sessionMinutes) * time.Minute
		}
	})
	return nil
}
