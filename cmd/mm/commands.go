package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazu/metamodel/archive"
	"github.com/chazu/metamodel/heap"
	"github.com/chazu/metamodel/manifest"
	"github.com/chazu/metamodel/repr"
)

var reprsCmd = &cobra.Command{
	Use:   "reprs",
	Short: "List the registered representations",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := buildWorld(cfg)
		if err != nil {
			return err
		}
		defer w.Close()

		out := cmd.OutOrStdout()
		for _, name := range w.Registry.Names() {
			id, _ := w.Registry.ID(name)
			fmt.Fprintf(out, "%2d  %s\n", id, name)
		}
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the defined types with their representation and attributes",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := buildWorld(cfg)
		if err != nil {
			return err
		}
		defer w.Close()

		out := cmd.OutOrStdout()
		for _, name := range w.Types() {
			t, _ := w.Lookup(name)
			st := t.WHAT.STable()
			fmt.Fprintf(out, "%-16s %-14s methods=%d attributes=[%s]\n",
				name, st.REPR.Name(), t.HOW.Methods().Len(),
				strings.Join(t.HOW.AttributeNames(), " "))
		}
		return nil
	},
}

var flagInstances int

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Allocate unreachable instances and run one collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := buildWorld(cfg)
		if err != nil {
			return err
		}
		defer w.Close()

		allocated := 0
		for _, name := range w.Types() {
			for i := 0; i < flagInstances; i++ {
				obj, err := w.New(name)
				if err != nil {
					return err
				}
				if repr.Defined(obj) {
					allocated++
				}
			}
		}

		stats := w.Collect()
		fmt.Fprintf(cmd.OutOrStdout(), "allocated=%d marked=%d swept=%d live=%d duration=%s\n",
			allocated, stats.Marked, stats.Swept, stats.Live, stats.Duration)
		return nil
	},
}

var (
	flagSnapshotOut string
	flagArchive     string
)

func archivePath() string {
	if flagArchive != "" {
		return flagArchive
	}
	return cfg.ArchivePath()
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write a CBOR snapshot of the reachable heap",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := buildWorld(cfg)
		if err != nil {
			return err
		}
		defer w.Close()

		s := w.Snapshot()
		data, err := heap.MarshalSnapshot(s)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}

		path := flagSnapshotOut
		if path == "" {
			path = cfg.SnapshotPath()
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s: %d nodes, %d bytes -> %s\n",
			s.ID, len(s.Nodes), len(data), path)

		if db := archivePath(); db != "" {
			a, err := archive.Open(db)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Save(s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived in %s\n", db)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the snapshots kept in the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := archivePath()
		if db == "" {
			return fmt.Errorf("no archive configured: set snapshot.archive in %s or pass --archive", manifest.FileName)
		}
		a, err := archive.Open(db)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %s  nodes=%d roots=%d bytes=%d\n",
				e.ID, e.Taken.UTC().Format(time.RFC3339), e.Nodes, e.Roots, e.Size)
		}
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVarP(&flagInstances, "instances", "n", 1, "garbage instances to allocate per type")
	snapshotCmd.Flags().StringVarP(&flagSnapshotOut, "output", "o", "", "output file (default from manifest)")
	snapshotCmd.Flags().StringVar(&flagArchive, "archive", "", "also store the snapshot in this SQLite archive")
	historyCmd.Flags().StringVar(&flagArchive, "archive", "", "SQLite archive to read (default from manifest)")
}
