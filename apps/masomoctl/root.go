package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-admin/client"
	"github.com/trezcool/masomo-admin/core"
	logsvc "github.com/trezcool/masomo-admin/services/logger"
)

// ctl holds the state shared by every command.
type ctl struct {
	out        io.Writer
	loadConfig func() (*core.Config, error)
	api        *client.API

	baseURL string
	token   string
	timeout time.Duration
	verbose bool
}

func newRootCmd(out io.Writer, loadConfig func() (*core.Config, error)) *cobra.Command {
	c := &ctl{out: out, loadConfig: loadConfig}

	root := &cobra.Command{
		Use:               "masomoctl",
		Short:             "masomoctl manages classrooms, courses, groups and subjects",
		SilenceUsage:      true,
		PersistentPreRunE: c.init,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "API base URL (defaults to the clientBaseURL setting)")
	root.PersistentFlags().StringVar(&c.token, "token", "", "bearer token (defaults to the clientToken setting)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 0, "request timeout (defaults to the clientTimeout setting)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log cache activity to stderr")

	root.AddCommand(
		c.meCmd(),
		newResourceCmd(c, "classrooms", func(api *client.API) *client.ClassroomClient { return api.Classrooms }),
		newResourceCmd(c, "courses", func(api *client.API) *client.CourseClient { return api.Courses }),
		newResourceCmd(c, "groups", func(api *client.API) *client.GroupClient { return api.Groups }),
		newResourceCmd(c, "subjects", func(api *client.API) *client.SubjectClient { return api.Subjects }),
	)
	return root
}

func (c *ctl) init(cmd *cobra.Command, _ []string) error {
	conf, err := c.loadConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	if c.baseURL != "" {
		conf.Client.BaseURL = c.baseURL
	}
	if c.token != "" {
		conf.Client.Token = c.token
	}
	if c.timeout > 0 {
		conf.Client.Timeout = c.timeout
	}

	logger := logsvc.NewStdLogger(log.New(cmd.ErrOrStderr(), "MASOMOCTL : ", log.LstdFlags), c.verbose)
	c.api, err = client.NewAPI(client.OptionsFromConfig(conf, logger))
	return err
}

func (c *ctl) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Print the principal the token was issued to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.api.Me(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(p)
		},
	}
}

func (c *ctl) print(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}
