package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"shareit/internal/models"

	"golang.org/x/term"
)

const (
	outputAuto  = "auto"
	outputTable = "table"
	outputJSON  = "json"
)

// resolveOutput turns "auto" into table on a terminal and JSON otherwise.
func resolveOutput(mode string, out io.Writer) (string, error) {
	switch mode {
	case outputTable, outputJSON:
		return mode, nil
	case outputAuto, "":
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return outputTable, nil
		}
		return outputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", mode)
	}
}

func (a *app) render(v any, table func(io.Writer)) error {
	mode, err := resolveOutput(a.output, a.out)
	if err != nil {
		return err
	}
	if mode == outputTable {
		table(a.out)
		return nil
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printNotifications(w io.Writer, list []models.Notification) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No failed notifications.")
		return
	}
	fmt.Fprintf(w, "%-6s %-18s %-8s %-7s %-20s %s\n", "ID", "Event", "Booking", "Retries", "Created", "Last error")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, n := range list {
		lastErr := ""
		if n.LastError != nil {
			lastErr = *n.LastError
		}
		fmt.Fprintf(w, "%-6d %-18s %-8d %-7d %-20s %s\n",
			n.ID, n.EventType, n.BookingID, n.RetryCount,
			n.CreatedAt.Local().Format("2006-01-02 15:04:05"), truncate(lastErr, 40))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
