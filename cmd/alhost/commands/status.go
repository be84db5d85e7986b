package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/benhaub/abstractionlayer/internal/cli/output"
	"github.com/benhaub/abstractionlayer/internal/cli/timeutil"
	"github.com/benhaub/abstractionlayer/pkg/osal"
)

var (
	statusOutput string
	statusPort   int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query the running alhost process's OS capability status",
	Long: `Status calls the osal admin API's /status endpoint and prints the
operating-system-level thread/semaphore/queue/timer counts.

Examples:
  alhost status
  alhost status --api-port 9091 --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusPort, "api-port", 9091, "osal admin API port")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// statusRow adapts osal.OperatingSystemStatus to output.TableRenderer.
type statusRow struct {
	osal.OperatingSystemStatus
}

func (s statusRow) Headers() []string {
	return []string{"Threads", "Semaphores", "Queues", "Timers", "Idle %", "Uptime"}
}

func (s statusRow) Rows() [][]string {
	return [][]string{{
		fmt.Sprintf("%d", s.ThreadCount),
		fmt.Sprintf("%d", s.SemaphoreCount),
		fmt.Sprintf("%d", s.QueueCount),
		fmt.Sprintf("%d", s.TimerCount),
		fmt.Sprintf("%.1f", s.IdlePercent),
		timeutil.FormatUptime(fmt.Sprintf("%dms", s.UpTime)),
	}}
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://localhost:%d/status", statusPort)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("could not reach osal admin API at %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("osal admin API returned %s", resp.Status)
	}

	var st osal.OperatingSystemStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("decode status response: %w", err)
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), st)
	case output.FormatYAML:
		return output.PrintYAML(cmd.OutOrStdout(), st)
	default:
		return output.PrintTable(cmd.OutOrStdout(), statusRow{st})
	}
}
