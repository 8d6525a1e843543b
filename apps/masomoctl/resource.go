package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/masomo-admin/client"
	"github.com/trezcool/masomo-admin/core/resource"
)

type listFlags struct {
	page   int
	size   int
	sortBy string
	asc    bool
}

func (lf *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&lf.page, "page", resource.DefaultPage, "page index, starting at 0")
	cmd.Flags().IntVar(&lf.size, "size", resource.DefaultSize, "page size")
	cmd.Flags().StringVar(&lf.sortBy, "sort-by", resource.DefaultSortBy, "sort field")
	cmd.Flags().BoolVar(&lf.asc, "asc", !resource.DefaultSortDesc, "sort in ascending order")
}

func (lf *listFlags) params() resource.Params {
	desc := !lf.asc
	return resource.Params{Page: &lf.page, Size: &lf.size, SortBy: &lf.sortBy, SortDesc: &desc}
}

// watchState is the printed form of a client.QueryState.
type watchState struct {
	Status    string      `json:"status"`
	Stale     bool        `json:"stale"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	FetchedAt *time.Time  `json:"fetchedAt,omitempty"`
}

// newResourceCmd builds the commands of one resource collection.
func newResourceCmd[T any, C any, U client.Identifiable](
	c *ctl,
	name string,
	rc func(*client.API) *client.ResourceClient[T, C, U],
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Manage " + name,
	}

	var lf listFlags
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of " + name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := rc(c.api).List(cmd.Context(), lf.params())
			if err != nil {
				return err
			}
			return c.print(page)
		},
	}
	lf.register(listCmd)

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Print one of the " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := rc(c.api).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(obj)
		},
	}

	var createData string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create one of the " + name + " from JSON (--data or stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var dto C
			if err := decodeInput(cmd.InOrStdin(), createData, nil, &dto); err != nil {
				return err
			}
			obj, err := rc(c.api).Create(cmd.Context(), dto)
			if err != nil {
				return err
			}
			return c.print(obj)
		},
	}
	createCmd.Flags().StringVarP(&createData, "data", "d", "", "JSON body")

	var updateData string
	updateCmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update one of the " + name + " from JSON (--data or stdin); missing fields are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dto U
			if err := decodeInput(cmd.InOrStdin(), updateData, map[string]interface{}{"id": args[0]}, &dto); err != nil {
				return err
			}
			obj, err := rc(c.api).Update(cmd.Context(), dto)
			if err != nil {
				return err
			}
			return c.print(obj)
		},
	}
	updateCmd.Flags().StringVarP(&updateData, "data", "d", "", "JSON body")

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one of the " + name,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			obj, err := rc(c.api).Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(obj)
		},
	}

	var (
		wf       listFlags
		interval time.Duration
		count    int
	)
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the state transitions of a page of " + name + " until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			sub := rc(c.api).WatchList(ctx, wf.params())
			defer sub.Close()
			return watchList(ctx, c, sub, interval, count)
		},
	}
	wf.register(watchCmd)
	watchCmd.Flags().DurationVar(&interval, "interval", 0, "refetch the page periodically")
	watchCmd.Flags().IntVar(&count, "count", 0, "exit after printing this many settled states")

	cmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd, watchCmd)
	return cmd
}

// watchList prints the states of sub until ctx is done or `count` settled states were printed.
func watchList[T any](ctx context.Context, c *ctl, sub *client.Subscription[resource.Page[T]], interval time.Duration, count int) error {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	settled := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			sub.Refetch()
		case st, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			ws := watchState{Status: st.Status.String(), Stale: st.Stale}
			if !st.FetchedAt.IsZero() {
				ws.Data = st.Data
				fetchedAt := st.FetchedAt
				ws.FetchedAt = &fetchedAt
			}
			if st.Err != nil {
				ws.Error = st.Err.Error()
			}
			if err := c.print(ws); err != nil {
				return err
			}
			if st.Status == client.StatusSuccess || st.Status == client.StatusError {
				if settled++; count > 0 && settled >= count {
					return nil
				}
			}
		}
	}
}

// decodeInput decodes the JSON object given inline (or read from `in`) into dst, after merging `extra`.
func decodeInput(in io.Reader, inline string, extra map[string]interface{}, dst interface{}) error {
	var raw []byte
	if inline != "" {
		raw = []byte(inline)
	} else {
		var err error
		if raw, err = io.ReadAll(in); err != nil {
			return errors.Wrap(err, "reading input")
		}
	}
	if strings.TrimSpace(string(raw)) == "" {
		return errors.New("no input: pass a JSON object with --data or on stdin")
	}

	fields := make(map[string]interface{})
	if err := json.Unmarshal(raw, &fields); err != nil {
		return errors.Wrap(err, "decoding input")
	}
	for k, v := range extra {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, "encoding input")
	}
	return errors.Wrap(json.Unmarshal(merged, dst), "decoding input")
}
