package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

func main() {
	builder := dashboard.NewDashboardBuilder("Weather Alerts Backend").
		Uid("weather-alerts-backend").
		Tags([]string{"weather-alerts", "push", "prometheus"}).
		Refresh("1m").
		Time("now-6h", "now").
		Timezone(common.TimeZoneBrowser)

	builder = builder.WithRow(dashboard.NewRowBuilder("Registrations"))
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Registration rate").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_registrations_total[5m]))`).
					LegendFormat("accepted"),
			).
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_registrations_rejected_total[5m]))`).
					LegendFormat("rejected"),
			),
	)

	builder = builder.WithRow(dashboard.NewRowBuilder("Broadcasts"))
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Broadcast rate").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_broadcasts_total[5m]))`).
					LegendFormat("dispatched"),
			).
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_broadcasts_empty_total[5m]))`).
					LegendFormat("empty"),
			),
	)
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Batches").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_batches_sent_total[5m]))`).
					LegendFormat("sent"),
			).
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_batches_failed_total[5m]))`).
					LegendFormat("failed"),
			),
	)
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Tokens addressed").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_tokens_addressed_total[5m]))`).
					LegendFormat("tokens"),
			),
	)

	builder = builder.WithRow(dashboard.NewRowBuilder("Dependencies"))
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Gateway request duration avg").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_gateway_request_duration_seconds_sum[5m])) / sum(rate(weather_alerts_gateway_request_duration_seconds_count[5m]))`).
					LegendFormat("avg"),
			),
	)
	builder = builder.WithPanel(
		timeseries.NewPanelBuilder().
			Title("Token store errors").
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_store_write_errors_total[5m]))`).
					LegendFormat("writes"),
			).
			WithTarget(
				prometheus.NewDataqueryBuilder().
					Expr(`sum(rate(weather_alerts_store_read_errors_total[5m]))`).
					LegendFormat("reads"),
			),
	)

	dashboardJSON, err := builder.Build()
	if err != nil {
		panic(err)
	}

	outputPath := os.Getenv("DASHBOARD_OUT")
	if outputPath == "" {
		outputPath = "dashboard.json"
	}

	payload, err := json.MarshalIndent(dashboardJSON, "", "  ")
	if err != nil {
		panic(err)
	}

	if err := os.WriteFile(outputPath, payload, 0o600); err != nil {
		panic(err)
	}

	fmt.Printf("dashboard written to %s\n", outputPath)
}
