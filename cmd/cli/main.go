package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	rootCmd   = &cobra.Command{
		Use:   "tgdl",
		Short: "Inspect the downloader bot's job history",
		Long:  `A command-line client for the bot's read-only status API. Jobs are submitted through Telegram; this tool only inspects them.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Status API URL")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)

	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().StringP("platform", "p", "", "Filter by platform")
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List fetch jobs",
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")
		platform, _ := cmd.Flags().GetString("platform")

		url := serverURL + "/api/v1/jobs"
		sep := "?"
		if status != "" {
			url += sep + "status=" + status
			sep = "&"
		}
		if platform != "" {
			url += sep + "platform=" + platform
		}

		body := fetch(url)
		var jobs []map[string]interface{}
		json.Unmarshal(body, &jobs)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tURL\tPLATFORM\tSTATUS\tCREATED")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncate(str(j["id"]), 8),
				truncate(str(j["url"]), 40),
				j["platform"],
				j["status"],
				j["created_at"])
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job statistics",
	Run: func(cmd *cobra.Command, args []string) {
		body := fetch(serverURL + "/api/v1/jobs/stats")
		var stats map[string]interface{}
		json.Unmarshal(body, &stats)

		fmt.Println("Job Statistics:")
		fmt.Printf("  Total:      %v\n", stats["total"])
		fmt.Printf("  Queued:     %v\n", stats["queued"])
		fmt.Printf("  Processing: %v\n", stats["processing"])
		fmt.Printf("  Completed:  %v\n", stats["completed"])
		fmt.Printf("  Partial:    %v\n", stats["partial"])
		fmt.Printf("  Failed:     %v\n", stats["failed"])
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get job details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body := fetch(serverURL + "/api/v1/jobs/" + args[0])
		var job map[string]interface{}
		json.Unmarshal(body, &job)

		fmt.Printf("Job Details:\n")
		fmt.Printf("  ID:       %s\n", job["id"])
		fmt.Printf("  URL:      %s\n", job["url"])
		fmt.Printf("  Platform: %s\n", job["platform"])
		fmt.Printf("  Status:   %s\n", job["status"])
		if job["tier"] != nil {
			fmt.Printf("  Tier:     %s\n", job["tier"])
		}
		fmt.Printf("  Created:  %s\n", job["created_at"])
		if job["error_message"] != nil && job["error_message"] != "" {
			fmt.Printf("  Error:    %s\n", job["error_message"])
		}
		if job["file_path"] != nil && job["file_path"] != "" {
			fmt.Printf("  File:     %s\n", job["file_path"])
		}
	},
}

func fetch(url string) []byte {
	resp, err := http.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
		os.Exit(1)
	}
	return body
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
