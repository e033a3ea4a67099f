package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/silverglade/conclave/internal/config"
	"github.com/silverglade/conclave/internal/memory"
)

var memoryLimit int

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or clear agent memory",
}

var memoryShowCmd = &cobra.Command{
	Use:   "show <agent>",
	Short: "Show an agent's recent memories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMemory()
		if err != nil {
			return err
		}
		defer store.Close()

		agent := args[0]
		entries, err := store.ListRecent(agent, memoryLimit)
		if err != nil {
			return fmt.Errorf("list memories for %s: %w", agent, err)
		}
		if len(entries) == 0 {
			fmt.Printf("no memories recorded for %s\n", agent)
			return nil
		}

		kindColor := map[string]*color.Color{
			memory.KindResult: color.New(color.FgGreen),
			memory.KindError:  color.New(color.FgRed),
			memory.KindNote:   color.New(color.FgCyan),
		}
		for _, e := range entries {
			c, ok := kindColor[e.Kind]
			if !ok {
				c = color.New(color.FgWhite)
			}
			fmt.Printf("%s %s %s\n",
				e.CreatedAt.Format("2006-01-02 15:04"),
				c.Sprintf("[%s]", e.Kind),
				firstLine(e.Content))
		}
		return nil
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear <agent>",
	Short: "Delete all memories for an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openMemory()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ClearAgent(args[0]); err != nil {
			return fmt.Errorf("clear memories for %s: %w", args[0], err)
		}
		color.Green("cleared memories for %s", args[0])
		return nil
	},
}

func openMemory() (*memory.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dbPath := cfg.Memory.DBPath
	if dbPath == "" {
		dbPath = memory.DefaultDBPath()
	}
	store, err := memory.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open memory database: %w", err)
	}
	return store, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " …"
	}
	if len(s) > 120 {
		cut := 120
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut] + "…"
	}
	return s
}

func init() {
	memoryShowCmd.Flags().IntVar(&memoryLimit, "limit", 20, "Maximum entries to show")
	memoryCmd.AddCommand(memoryShowCmd)
	memoryCmd.AddCommand(memoryClearCmd)
}
