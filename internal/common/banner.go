package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner, naming which
// transports the process actually exposes for this run.
func PrintBanner(config *Config, logger arbor.ILogger) {
	version := GetVersion()
	build := GetBuild()

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(80)

	fmt.Printf("\n")
	b.PrintTopLine()
	b.PrintCenteredText("DOCX-MCP")
	b.PrintCenteredText("Documentation Graph Engine")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 18)
	b.PrintKeyValue("Build", build, 18)
	b.PrintKeyValue("Environment", config.Environment, 18)
	b.PrintKeyValue("DB Namespace", config.Database.Namespace, 18)
	if config.Database.InMemory {
		b.PrintKeyValue("Backend", "in-memory", 18)
	} else {
		b.PrintKeyValue("Backend", config.Database.URI, 18)
	}
	b.PrintBottomLine()
	fmt.Printf("\n")

	logger.Info().
		Str("version", version).
		Str("build", build).
		Str("environment", config.Environment).
		Str("db_namespace", config.Database.Namespace).
		Bool("db_in_memory", config.Database.InMemory).
		Msg("docx-mcp started")

	printTransports(config, logger)
	fmt.Printf("\n")
}

// printTransports lists each enabled transport to console and structured
// log, so an operator can see at a glance what surfaces this run exposes.
func printTransports(config *Config, logger arbor.ILogger) {
	fmt.Printf("Transports:\n")

	enabled := []string{}
	if config.Transport.EnableStdio {
		fmt.Printf("   - MCP stdio\n")
		enabled = append(enabled, "mcp_stdio")
	}
	if config.Transport.McpServe {
		fmt.Printf("   - MCP HTTP  : %s\n", config.Transport.McpHTTPAddr)
		enabled = append(enabled, "mcp_http")
	}
	if config.Transport.IngestServe {
		fmt.Printf("   - Ingest HTTP: %s (timeout %ds, max body %d bytes)\n",
			config.Transport.IngestAddr, config.Transport.IngestTimeoutSecs, config.Transport.IngestMaxBodyBytes)
		enabled = append(enabled, "ingest_http")
	}
	if len(enabled) == 0 {
		fmt.Printf("   - none (every transport disabled; process will idle)\n")
	}

	logger.Info().
		Strs("transports", enabled).
		Int("registry_ttl_secs", config.Registry.TTLSecs).
		Msg("transports configured")
}

// PrintShutdownBanner displays the application shutdown banner.
func PrintShutdownBanner(logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(42)

	b.PrintTopLine()
	b.PrintCenteredText("SHUTTING DOWN")
	b.PrintCenteredText("DOCX-MCP")
	b.PrintBottomLine()
	fmt.Println()

	logger.Info().Msg("docx-mcp shutting down")
}

// PrintColorizedMessage prints a message with specified color; it does not log,
// and the logger argument is unused
func PrintColorizedMessage(color, message string, logger arbor.ILogger) {
	fmt.Printf("%s%s%s\n", color, message, banner.ColorReset)
}

// PrintSuccess prints a success message in green and logs it
func PrintSuccess(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorGreen, fmt.Sprintf("✓ %s", message), logger)
	logger.Info().Str("type", "success").Msg(message)
}

// PrintError prints an error message in red and logs it
func PrintError(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorRed, fmt.Sprintf("✗ %s", message), logger)
	logger.Error().Str("type", "error").Msg(message)
}

// PrintWarning prints a warning message in yellow and logs it
func PrintWarning(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorYellow, fmt.Sprintf("⚠ %s", message), logger)
	logger.Warn().Str("type", "warning").Msg(message)
}

// PrintInfo prints an info message in cyan and logs it
func PrintInfo(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorCyan, fmt.Sprintf("ℹ %s", message), logger)
	logger.Info().Str("type", "info").Msg(message)
}
