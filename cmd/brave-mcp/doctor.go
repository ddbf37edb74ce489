package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/brave-mcp/pkg/browser"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that this machine can launch and reach a browser",
	Long: `Runs the same pre-flight checks the server performs before connecting:
browser executable discovery, loopback host connectivity, and availability
of the debugging port range. No browser is started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadSettings(cmd.Flags())
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		report := runDiagnostics(ctx, st)
		if asJSON {
			return writeJSONReport(cmd.OutOrStdout(), report)
		}
		writeTextReport(cmd.OutOrStdout(), report)
		if !report.Healthy() {
			return fmt.Errorf("doctor found problems")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().Bool("json", false, "Print the report as JSON")
}

// diagnostics is the doctor report.
type diagnostics struct {
	ConfigPath      string                   `json:"config_path"`
	Executable      string                   `json:"executable,omitempty"`
	ExecutableError string                   `json:"executable_error,omitempty"`
	Headless        bool                     `json:"headless"`
	Hosts           browser.HostConnectivity `json:"hosts"`
	PortRangeStart  int                      `json:"port_range_start"`
	PortRangeEnd    int                      `json:"port_range_end"`
	PortsAvailable  int                      `json:"ports_available"`
	FirstFreePort   int                      `json:"first_free_port,omitempty"`
	BusyPorts       []int                    `json:"busy_ports,omitempty"`
}

// Healthy reports whether a launch could plausibly succeed.
func (d diagnostics) Healthy() bool {
	return d.ExecutableError == "" &&
		(d.Hosts.IPv4OK || d.Hosts.LocalhostOK) &&
		d.PortsAvailable > 0
}

func runDiagnostics(ctx context.Context, st *settings) diagnostics {
	cfg := st.Browser
	d := diagnostics{
		ConfigPath:     st.ConfigPath,
		Headless:       cfg.Headless,
		PortRangeStart: cfg.PortRangeStart,
		PortRangeEnd:   cfg.PortRangeEnd,
	}

	explicit := cfg.ExecutablePath
	if st.Launch.ExecutablePath != "" {
		explicit = st.Launch.ExecutablePath
	}
	if path, err := browser.ResolveExecutable(explicit); err != nil {
		d.ExecutableError = err.Error()
	} else {
		d.Executable = path
	}

	d.Hosts = browser.CheckHostConnectivity(ctx, cfg.ProbePort)

	for _, probe := range browser.ProbePorts(cfg.PortRangeStart, cfg.PortRangeEnd) {
		if !probe.Available {
			d.BusyPorts = append(d.BusyPorts, probe.Port)
			continue
		}
		if d.PortsAvailable == 0 {
			d.FirstFreePort = probe.Port
		}
		d.PortsAvailable++
	}
	return d
}

func writeJSONReport(w io.Writer, d diagnostics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func writeTextReport(w io.Writer, d diagnostics) {
	mark := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "FAIL"
	}

	fmt.Fprintf(w, "Settings file:  %s\n", d.ConfigPath)
	fmt.Fprintf(w, "Headless:       %t\n\n", d.Headless)

	if d.ExecutableError != "" {
		fmt.Fprintf(w, "[%s] executable: %s\n", mark(false), d.ExecutableError)
	} else {
		fmt.Fprintf(w, "[%s] executable: %s\n", padMark(mark(true)), d.Executable)
	}

	fmt.Fprintf(w, "[%s] 127.0.0.1 loopback\n", padMark(mark(d.Hosts.IPv4OK)))
	fmt.Fprintf(w, "[%s] localhost loopback\n", padMark(mark(d.Hosts.LocalhostOK)))
	fmt.Fprintf(w, "       recommended host: %s\n", d.Hosts.RecommendedHost)

	total := d.PortRangeEnd - d.PortRangeStart + 1
	fmt.Fprintf(w, "[%s] debugging ports %d-%d: %d/%d free",
		padMark(mark(d.PortsAvailable > 0)), d.PortRangeStart, d.PortRangeEnd, d.PortsAvailable, total)
	if d.PortsAvailable > 0 {
		fmt.Fprintf(w, ", first free %d", d.FirstFreePort)
	}
	fmt.Fprintln(w)
	if len(d.BusyPorts) > 0 && len(d.BusyPorts) <= 10 {
		fmt.Fprintf(w, "       busy: %v\n", d.BusyPorts)
	}
}

func padMark(m string) string {
	if len(m) < 4 {
		return m + "  "
	}
	return m
}
