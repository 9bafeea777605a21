// Command timeflow is the CLI client for a running timeflowd. It talks
// to the REST API, so it sees the same store, reminders, and sync as
// every other connected shell.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/timeflowapp/timeflow/clock"
	"github.com/timeflowapp/timeflow/internal/version"
	"github.com/timeflowapp/timeflow/task"
)

var serverAddr string

func main() {
	root := &cobra.Command{
		Use:           "timeflow",
		Short:         "Day planner CLI for a running timeflowd",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&serverAddr, "addr", "http://localhost:8735", "timeflowd base URL")

	root.AddCommand(
		newListCmd(),
		newAddCmd(),
		newRmCmd(),
		newToggleCmd(),
		newTitlesCmd(),
		newSettingsCmd(),
		newStatusCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newListCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a day, recurring occurrences included",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := "/api/tasks"
			if date != "" {
				if _, err := clock.ParseDate(date); err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
				}
				path += "?date=" + date
			}
			var occs []occurrenceView
			if err := apiGet(path, &occs); err != nil {
				return err
			}

			var day map[string]string
			dayPath := "/api/day"
			if date != "" {
				dayPath += "?date=" + date
			}
			if err := apiGet(dayPath, &day); err == nil && day["label"] != "" {
				fmt.Printf("%s (%s)\n", day["label"], day["date"])
			}

			if len(occs) == 0 {
				fmt.Println("No tasks.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tTITLE\tSTATUS")
			for _, o := range occs {
				status := ""
				if o.IsCompleted {
					status = "done"
				}
				if o.IsRecurringInstance {
					status = strings.TrimSpace(status + " recurring")
				}
				fmt.Fprintf(w, "%s\t%s-%s\t%s\t%s\n", o.ID, o.StartTime, o.EndTime, o.Title, status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to list (default today)")
	return cmd
}

func newAddCmd() *cobra.Command {
	var (
		start, end, date, desc, recur, color string
		reminder                             int
		important                            bool
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			t := task.Task{
				Title:       args[0],
				StartTime:   start,
				EndTime:     end,
				Description: desc,
				IsImportant: important,
				Recurring:   task.Recurrence(recur),
				Color:       task.Color(color),
			}
			if date == "" {
				t.Date = clock.Today()
			} else {
				d, err := clock.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
				}
				t.Date = d
			}
			if reminder > 0 {
				t.ReminderMinutes = &reminder
			}
			var created task.Task
			if err := apiPost("/api/tasks", t, &created); err != nil {
				return err
			}
			fmt.Printf("Created %s (%s %s-%s)\n", created.ID, created.Date, created.StartTime, created.EndTime)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start time HH:MM (required)")
	cmd.Flags().StringVar(&end, "end", "", "end time HH:MM (required)")
	cmd.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.Flags().StringVar(&recur, "recur", "", "recurrence: daily, weekly, weekdays, monthly")
	cmd.Flags().StringVar(&color, "color", "", "color tag")
	cmd.Flags().IntVar(&reminder, "reminder", 0, "reminder minutes before start")
	cmd.Flags().BoolVar(&important, "important", false, "mark as important")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task; a recurring task loses every occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := apiDelete("/api/tasks/" + args[0]); err != nil {
				return err
			}
			fmt.Println("Deleted", args[0])
			return nil
		},
	}
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := apiPost("/api/tasks/"+args[0]+"/toggle", nil, nil); err != nil {
				return err
			}
			fmt.Println("Toggled", args[0])
			return nil
		},
	}
}

func newTitlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "titles <query>",
		Short: "Suggest past task titles matching a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var titles []string
			if err := apiGet("/api/titles?q="+args[0], &titles); err != nil {
				return err
			}
			for _, t := range titles {
				fmt.Println(t)
			}
			return nil
		},
	}
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			var settings task.Settings
			if err := apiGet("/api/settings", &settings); err != nil {
				return err
			}
			out, err := json.MarshalIndent(settings, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			patch := map[string]any{args[0]: coerce(args[1])}
			if err := apiPut("/api/settings", patch, nil); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	})
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the server",
		RunE: func(_ *cobra.Command, _ []string) error {
			var status map[string]string
			if err := apiGet("/api/status", &status); err != nil {
				return err
			}
			fmt.Printf("Server %s, version %s\n", status["status"], status["version"])
			return nil
		},
	}
}

// coerce turns a CLI string into the JSON type the settings table
// expects: bools and numbers pass through as themselves.
func coerce(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// occurrenceView mirrors the wire shape of a task occurrence.
type occurrenceView struct {
	task.Task
	OriginalID          string `json:"originalId"`
	IsRecurringInstance bool   `json:"isRecurringInstance"`
}

// --- HTTP helpers ---

func apiGet(path string, out any) error {
	resp, err := http.Get(serverAddr + path)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", serverAddr, err)
	}
	return decode(resp, out)
}

func apiPost(path string, in, out any) error {
	body, err := encode(in)
	if err != nil {
		return err
	}
	resp, err := http.Post(serverAddr+path, "application/json", body)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", serverAddr, err)
	}
	return decode(resp, out)
}

func apiPut(path string, in, out any) error {
	body, err := encode(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, serverAddr+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", serverAddr, err)
	}
	return decode(resp, out)
}

func apiDelete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, serverAddr+path, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", serverAddr, err)
	}
	return decode(resp, nil)
}

func encode(in any) (io.Reader, error) {
	if in == nil {
		return nil, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return bytes.NewReader(data), nil
}

func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server: %s", apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
