package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nemopss/fin-ng/backend/app"
	"github.com/nemopss/fin-ng/backend/config"
	"github.com/nemopss/fin-ng/backend/seed"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(stderr)
	storeCfg := config.StoreFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	storage, err := app.OpenStorage(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer storage.Close()

	res, err := seed.Load(ctx, storage)
	if errors.Is(err, seed.ErrAlreadySeeded) {
		fmt.Fprintln(stdout, "Store already has users, nothing to seed")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}

	fmt.Fprintf(stdout, "Seeded %d users and %d transactions\n", len(res.Users), len(res.Transactions))
	for _, u := range res.Users {
		fmt.Fprintf(stdout, "  %-6s %s (password %s)\n", u.Username, u.ID, seed.DefaultPassword)
	}
	return nil
}
