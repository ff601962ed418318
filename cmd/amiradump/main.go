// Copyright 2026 The amira authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scigolib/amira"
	"github.com/scigolib/amira/log"
)

var (
	wantInfo      bool
	wantAtoms     bool
	wantFlat      bool
	verbose       bool
	defaultBinary bool
)

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

func dumpFile(path string) {
	logger := log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelInfo))
	if !verbose {
		logger = log.NewFilter(log.NewStdLogger(os.Stderr), log.FilterLevel(log.LevelWarn))
	}

	doc, err := amira.ReadFile(path, &amira.Options{
		Logger:        logger,
		DefaultBinary: defaultBinary,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return
	}

	fmt.Printf("%s: %s %s (binary=%v)\n", path, doc.Kind(), doc.Info.Version, doc.Info.IsBinary)

	if wantInfo {
		b, _ := json.Marshal(doc.Info)
		fmt.Println(prettyPrint(b))
	}
	if wantAtoms {
		fmt.Printf("top-level atoms: %d\n", len(doc.Atoms))
	}
	if wantFlat {
		flat := doc.Flatten()
		for _, k := range flat.Keys() {
			fmt.Println(" -", k)
		}
	}
}

func dump(cmd *cobra.Command, args []string) {
	target := args[0]

	if !isDirectory(target) {
		dumpFile(target)
		return
	}

	var files []string
	filepath.Walk(target, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	for _, f := range files {
		dumpFile(f)
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "amiradump",
		Short: "An Amira/HyperSurface file reader",
		Long:  "Reads AmiraMesh and HyperSurface scientific data files and dumps their structure",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [file or directory]",
		Short: "Dumps the parsed structure of a file",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	dumpCmd.Flags().BoolVar(&wantInfo, "info", false, "dump the header descriptor")
	dumpCmd.Flags().BoolVar(&wantAtoms, "atoms", false, "print the top-level atom count")
	dumpCmd.Flags().BoolVar(&wantFlat, "flat", false, "print the flattened top-level key set")
	dumpCmd.Flags().BoolVar(&defaultBinary, "default-binary", false, "assume binary payload mode on an unrecognized header")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
