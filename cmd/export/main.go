// Command export downloads the caller's transactions, filters them locally
// and writes the selected columns as CSV.
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
	"time"

	"golang.org/x/term"

	"github.com/nemopss/fin-ng/backend/client"
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

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("url", envOr("FINDASH_URL", "http://localhost:8080"), "API base URL")
	username := fs.String("user", "", "Username")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	columns := fs.String("columns", strings.Join(client.Columns, ","), "Comma separated columns")
	output := fs.String("o", "", `Output file ("-" for stdout, default transactions_<date>.csv)`)

	search := fs.String("search", "", "Substring of description, user id or amount")
	category := fs.String("category", "", "Revenue or Expense")
	status := fs.String("status", "", "Paid or Pending")
	owner := fs.String("owner", "", "Owner user id")
	dateFrom := fs.String("from", "", "Inclusive lower date bound (RFC 3339 or YYYY-MM-DD)")
	dateTo := fs.String("to", "", "Inclusive upper date bound (RFC 3339 or YYYY-MM-DD)")
	amountFrom := fs.String("min", "", "Inclusive minimum amount")
	amountTo := fs.String("max", "", "Inclusive maximum amount")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		fmt.Fprintln(stdout, "Usage: export -user <username> [-password <password>] [-url <api>] [-columns date,amount,...] [-o file.csv] [filters]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}

	filter, err := buildFilter(*search, *category, *status, *owner, *dateFrom, *dateTo, *amountFrom, *amountTo)
	if err != nil {
		return err
	}
	cols := splitColumns(*columns)

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stderr, "Password: ")
		if password, err = readPassword(stdin); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stderr)
	}

	ctx := context.Background()
	cl := client.New(*baseURL)
	if _, err := cl.Login(ctx, *username, password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	cache := client.NewCache()
	if err := cache.Sync(ctx, cl); err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}
	cache.SetFilter(filter)

	var w io.Writer = stdout
	path := *output
	if path == "" {
		path = client.ExportFileName(time.Now())
	}
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		w = f
	}

	if err := cache.ExportCSV(w, cols); err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(stderr, "Exported %d transactions to %s\n", len(cache.Filtered()), path)
	}
	return nil
}

func buildFilter(search, category, status, owner, dateFrom, dateTo, amountFrom, amountTo string) (models.Filter, error) {
	f := models.Filter{
		Search:   search,
		Category: models.Category(category),
		Status:   models.Status(status),
		User:     owner,
	}
	if f.Category != "" && !f.Category.Valid() {
		return f, fmt.Errorf("category must be Revenue or Expense, got %q", category)
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, fmt.Errorf("status must be Paid or Pending, got %q", status)
	}

	if dateFrom != "" {
		t, err := models.ParseLowerBound(dateFrom)
		if err != nil {
			return f, fmt.Errorf("-from: %w", err)
		}
		f.DateFrom = &t
	}
	if dateTo != "" {
		t, err := models.ParseUpperBound(dateTo)
		if err != nil {
			return f, fmt.Errorf("-to: %w", err)
		}
		f.DateTo = &t
	}
	if amountFrom != "" {
		a, err := models.ParseAmount(amountFrom)
		if err != nil {
			return f, fmt.Errorf("-min: %w", err)
		}
		f.AmountFrom = &a
	}
	if amountTo != "" {
		a, err := models.ParseAmount(amountTo)
		if err != nil {
			return f, fmt.Errorf("-max: %w", err)
		}
		f.AmountTo = &a
	}
	return f, nil
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
