package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the ctrack server reports a healthy database",
	Long: `Poll GET /health until it answers 200, then exit 0.

A server that is up but cannot reach its database answers 503 and is
still waited on. Exits 1 when the attempts run out or on interrupt.

Example:
  ctrackctl wait
  ctrackctl wait --host ctrack.internal --port 3000 --retries 60 --interval 500ms`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		retries, _ := cmd.Flags().GetInt("retries")
		interval, _ := cmd.Flags().GetDuration("interval")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		url := "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/health"
		if err := waitForHealthy(ctx, url, retries, interval, cmd.ErrOrStderr()); err != nil {
			fmt.Fprintf(os.Stderr, "ctrack did not become healthy: %v\n", err)
			os.Exit(1)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "ctrack is healthy")
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("host", "localhost", "Server host to check")
	waitCmd.Flags().IntP("port", "p", defaultPortInt(), "Server port to check")
	waitCmd.Flags().IntP("retries", "r", 90, "Number of attempts")
	waitCmd.Flags().Duration("interval", time.Second, "Delay between attempts")
}

// waitForHealthy polls url until it answers 200. Each failed attempt is
// reported on progress with the reason, and the last reason is part of the
// returned error.
func waitForHealthy(ctx context.Context, url string, retries int, interval time.Duration, progress io.Writer) error {
	client := &http.Client{Timeout: 2 * time.Second}

	var last error
	for attempt := 1; attempt <= retries; attempt++ {
		if last = probeHealth(ctx, client, url); last == nil {
			return nil
		}
		fmt.Fprintf(progress, "attempt %d/%d: %v\n", attempt, retries, last)

		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", retries, last)
}

func probeHealth(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body) == nil && body.Error != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("status %d", resp.StatusCode)
}
