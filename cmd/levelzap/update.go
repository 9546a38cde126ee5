package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// releaseURL is the GitHub API endpoint for the latest release.
const releaseURL = "https://api.github.com/repos/dterracino/levelzap/releases/latest"

// updateTimeout bounds the release check.
const updateTimeout = 10 * time.Second

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer version of levelzap",
	Long:  `Query GitHub for the latest release and report whether an update is available.`,
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

// release is the subset of the GitHub release payload we read.
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// runUpdate checks the latest published release against the build version.
func runUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), updateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseURL, nil)
	if err != nil {
		return fmt.Errorf("building release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not check for update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("could not check for update: unexpected status %s", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return fmt.Errorf("could not parse release info: %w", err)
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	if latest != "" && latest != version {
		printInfo("Update available: v%s (you are using %s)", latest, version)
		printInfo("Download it from: %s", rel.HTMLURL)
		return nil
	}

	printInfo("You are using the latest version: %s", version)
	return nil
}
