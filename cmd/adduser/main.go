package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/nemopss/fin-ng/backend/app"
	"github.com/nemopss/fin-ng/backend/auth"
	"github.com/nemopss/fin-ng/backend/config"
	"github.com/nemopss/fin-ng/backend/models"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email (optional)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	storeCfg := config.StoreFlags(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-email <email>] [-password <password>] [-backend sqlite|postgres|mongo] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	// Те же правила, что и у POST /api/auth/register
	req := models.RegisterRequest{Username: strings.TrimSpace(*username), Email: strings.TrimSpace(*email), Password: password}
	if err := validateRequest(req); err != nil {
		return err
	}

	ctx := context.Background()
	storage, err := app.OpenStorage(ctx, storeCfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer storage.Close()

	if _, err := storage.GetUserByUsername(ctx, req.Username); err == nil {
		return fmt.Errorf("user %s already exists", req.Username)
	} else if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := storage.CreateUser(ctx, models.User{Username: req.Username, Email: req.Email, Password: hash})
	if errors.Is(err, models.ErrConflict) {
		return fmt.Errorf("user %s or email %s already exists", req.Username, req.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Username, user.ID)
	return nil
}

func validateRequest(req models.RegisterRequest) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	if err := models.RegisterValidators(v); err != nil {
		return err
	}
	err := v.Struct(req)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s %s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid user: %s", strings.Join(msgs, "; "))
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// не терминал: тесты, пайпы
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
