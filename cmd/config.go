package main

import (
	"io"
	"net/url"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/assessment-advisor/internal/config"
)

const redacted = "REDACTED"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printConfig(cmd.OutOrStdout(), cfg)
	},
}

func printConfig(w io.Writer, c *config.Config) error {
	out := *c
	if out.Anthropic.Key != "" {
		out.Anthropic.Key = redacted
	}
	out.Store.DatabaseURL = redactURL(out.Store.DatabaseURL)
	out.Cache.RedisURL = redactURL(out.Cache.RedisURL)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return eris.Wrap(err, "encode config")
	}
	return eris.Wrap(enc.Close(), "encode config")
}

// redactURL hides the password of a connection URL. Values that do not
// parse as URLs, such as sqlite paths, are returned unchanged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), redacted)
	}
	return u.String()
}

func init() {
	rootCmd.AddCommand(configCmd)
}
