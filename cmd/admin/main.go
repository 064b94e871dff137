// Command admin bootstraps a marketplace deployment.
//
//	admin migrate [server flags]
//	admin create-admin -email root@example.rw [-name "Site Admin"] [-- server flags]
//
// Server flags are passed to the regular configuration loader, so -d and
// friends work as they do for the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server"
	"github.com/businessinrwanda/marketplace/internal/server/config"
	"github.com/businessinrwanda/marketplace/internal/server/repositories/repomanager"
	"github.com/businessinrwanda/marketplace/internal/server/services"
)

var errUsage = errors.New("usage: admin <migrate|create-admin> [options]")

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// loadConfig and openDB are seams so argument handling can be tested
// without a database.
var (
	loadConfig = config.LoadConfigArgs
	openDB     = server.OpenDB
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, args []string, w io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "migrate":
		return migrate(ctx, args[1:], w)
	case "create-admin":
		return createAdmin(ctx, args[1:], w)
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func migrate(ctx context.Context, args []string, w io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	fmt.Fprintln(w, "migrations applied")
	return nil
}

func createAdmin(ctx context.Context, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(w)
	email := fs.String("email", "", "admin email address")
	name := fs.String("name", "", "display name for a new account")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required: %w", errUsage)
	}

	password, err := promptPassword(w)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(fs.Args())
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	sessions := services.NewSessionService(db, rm, nil, cfg, logging.Nop{})
	user, created, err := sessions.EnsureAdmin(ctx, *email, password, *name)
	if err != nil {
		return err
	}

	if created {
		fmt.Fprintf(w, "created admin %s (%s)\n", user.Email, user.ID)
	} else {
		fmt.Fprintf(w, "promoted %s (%s) to admin\n", user.Email, user.ID)
	}
	return nil
}

// promptPassword reads the password twice without echo.
func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(first)

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
