package commands

import (
	"fmt"

	"github.com/foundrydata/foundry/internal/catalog"
	"github.com/foundrydata/foundry/internal/cli/output"
	"github.com/foundrydata/foundry/internal/project"
	"github.com/spf13/cobra"
)

// NewDoctorCommand creates the `doctor` command.
func NewDoctorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check project layout and connection profile completeness",
		Long: `Doctor loads the project the same way "compile" does, but stops before
resolving references: files that fail to parse are reported as warnings
rather than errors, so it is safe to run against a project with broken SQL.
It warns when the models directory yielded no models, reports every load
warning, checks that connections.yml (if present) declares every field its
adapter_type needs, and that each declared Kafka cluster has a Connect host
and port set. It does not contact the warehouse or Kafka Connect.`,
		Example: `  # Check the project in the current directory
  foundry doctor

  # Machine-readable output
  foundry doctor --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
	return cmd
}

// doctorCheck is one pass/warn/error finding, following the teacher's
// doctor.go HealthCheck shape, minus its lint-rule scoring.
type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "pass", "warn", "error"
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command) error {
	ctx := NewCommandContext(cmd)
	r := ctx.Renderer

	proj, err := project.Load(ctx.Cfg.ProjectDir)
	if err != nil {
		r.ErrorLine(err.Error())
		return err
	}

	checks := doctorChecks(proj)
	errCount := 0
	for _, c := range checks {
		if c.Status == "error" {
			errCount++
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		if jerr := r.JSON(map[string]any{"checks": checks, "healthy": errCount == 0}); jerr != nil {
			return jerr
		}
	default:
		renderDoctorChecks(r, checks)
	}

	if errCount > 0 {
		return fmt.Errorf("doctor found %d error(s)", errCount)
	}
	return nil
}

func doctorChecks(proj *project.Project) []doctorCheck {
	var checks []doctorCheck

	checks = append(checks, layoutCheck("models directory", proj.Config.ModelsDir, len(proj.Models) > 0 || proj.Config.ModelsDir == ""))
	checks = append(checks, layoutCheck("kafka directory", proj.Config.KafkaDir, true))

	for _, w := range proj.Warnings {
		checks = append(checks, doctorCheck{Name: "project load", Status: "warn", Detail: w.Error()})
	}

	checks = append(checks, connectionChecks(proj.Catalog)...)
	checks = append(checks, clusterChecks(proj.Catalog)...)

	return checks
}

func layoutCheck(name, dir string, ok bool) doctorCheck {
	if !ok {
		return doctorCheck{Name: name, Status: "warn", Detail: fmt.Sprintf("%q configured but no models were found under it", dir)}
	}
	return doctorCheck{Name: name, Status: "pass", Detail: dir}
}

func connectionChecks(cat *catalog.Catalog) []doctorCheck {
	if cat.Connections == nil || len(cat.Connections.Connections) == 0 {
		return []doctorCheck{{
			Name:   "connections.yml",
			Status: "warn",
			Detail: "no connections declared; foundry run will default to an in-memory DuckDB adapter",
		}}
	}

	var checks []doctorCheck
	for name, def := range cat.Connections.Connections {
		switch def.AdapterType {
		case "", "duckdb":
			checks = append(checks, doctorCheck{Name: "connection " + name, Status: "pass", Detail: "duckdb"})
		case "postgres":
			if def.Host == "" || def.Port == 0 || def.User == "" || def.Database == "" {
				checks = append(checks, doctorCheck{
					Name:   "connection " + name,
					Status: "error",
					Detail: "adapter_type postgres requires host, port, user, and database",
				})
				continue
			}
			checks = append(checks, doctorCheck{Name: "connection " + name, Status: "pass", Detail: "postgres"})
		default:
			checks = append(checks, doctorCheck{
				Name:   "connection " + name,
				Status: "error",
				Detail: fmt.Sprintf("unknown adapter_type %q", def.AdapterType),
			})
		}
	}
	return checks
}

func clusterChecks(cat *catalog.Catalog) []doctorCheck {
	var checks []doctorCheck
	for name, cluster := range cat.Clusters {
		if cluster.ConnectHost == "" || cluster.ConnectPort == 0 {
			checks = append(checks, doctorCheck{
				Name:   "kafka cluster " + name,
				Status: "error",
				Detail: "missing connect_host/connect_port, foundry run cannot deploy connectors",
			})
			continue
		}
		checks = append(checks, doctorCheck{Name: "kafka cluster " + name, Status: "pass", Detail: cluster.ConnectHost})
	}
	return checks
}

func renderDoctorChecks(r *output.Renderer, checks []doctorCheck) {
	styles := r.Styles()
	r.Header(1, "Project Doctor")
	for _, c := range checks {
		icon := styles.Success.Render("ok")
		switch c.Status {
		case "warn":
			icon = styles.Warning.Render("warn")
		case "error":
			icon = styles.Error.Render("error")
		}
		line := fmt.Sprintf("[%s] %s", icon, c.Name)
		if c.Detail != "" {
			line += ": " + c.Detail
		}
		r.Println(line)
	}
}
