package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/hub"
	"github.com/prasenjit/swagger-hub/internal/models"
	"github.com/prasenjit/swagger-hub/internal/option"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the hub configuration",
	Long: `Resolves the hub section of the configuration and lists the documents it
declares. The first invalid value is reported with its full configuration path.

With --fetch every document is also downloaded and the merged document is
validated as OpenAPI 3.` + hubSectionHelp,
	RunE: runValidate,
}

var validateFetch bool

func init() {
	validateCmd.Flags().BoolVar(&validateFetch, "fetch", false, "Fetch the documents and validate the merged result")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	root, err := loadHubSection()
	if err != nil {
		return err
	}

	return validateHub(cmd.Context(), cmd.OutOrStdout(), cfg, root, validateFetch)
}

func validateHub(ctx context.Context, w io.Writer, cfg *config.Config, root config.Section, fetch bool) error {
	hubOption, err := option.HubOption(root, cfg.Hub.Section)
	if err != nil {
		return fmt.Errorf("invalid hub configuration: %w", err)
	}

	describeHub(w, hubOption)

	if !fetch {
		return nil
	}

	provider, err := hub.New(hub.Dependencies{
		Transport: http.DefaultTransport,
		Options:   []hub.Option{hub.WithFetchTimeout(cfg.Hub.FetchTimeout)},
	}, hubOption)
	if err != nil {
		return err
	}

	doc, err := provider.Aggregate(ctx)
	if err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("merged document is not valid: %w", err)
	}

	fmt.Fprintf(w, "\nMerged document is valid: %d paths\n", doc.Paths.Len())
	return nil
}

func describeHub(w io.Writer, hubOption models.SwaggerHubOption) {
	fmt.Fprintf(w, "%s %s\n\n", hubOption.Option.Title, hubOption.Option.Version)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tLOCATION\tROUTE\tPARAMETERS")
	for i, doc := range hubOption.Documents {
		route := "/" + doc.URLSuffix
		if doc.IsDirectCall {
			route = "direct " + doc.ServerURL()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i, doc.DocumentLocation(), route, len(doc.Parameters))
	}
	tw.Flush()
}
