// Command quill is the terminal client for a running Quill service. It
// drives the same HTTP API the desktop client uses.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var addr string

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Generate and inspect freelance proposals",
	Long: `quill drives a running Quill service: generate proposals from job
postings, record edits, and inspect voice profiles, templates, and the
monthly cost ledger.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaultAddr := os.Getenv("QUILL_ADDR")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&addr, "addr", defaultAddr, "Quill service address")
}

func apiClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Minute}
}

func apiURL(path string) string {
	return strings.TrimRight(addr, "/") + "/api" + path
}

// getJSON issues a GET and decodes the response into out.
func getJSON(path string, out any) error {
	resp, err := apiClient().Get(apiURL(path))
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

// postJSON issues a POST with a JSON body and decodes the response into out.
func postJSON(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	resp, err := apiClient().Post(apiURL(path), "application/json", strings.NewReader(string(payload)))
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Code != "" {
				return errors.Errorf("%s (%s)", apiErr.Error, apiErr.Code)
			}
			return errors.New(apiErr.Error)
		}
		return errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(data, out), "decode response")
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "render output")
	}
	fmt.Println(string(data))
	return nil
}
