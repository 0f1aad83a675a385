// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

//go:build ignore

// This tool validates that all *.go files in the repository have the license
// header attached. Run it with "go run checkcopyright.go".
package main

import (
	"bytes"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	licenseText   = []byte("// under the Apache License Version 2.0.")
	copyrightLine = regexp.MustCompile(`(?m)^// Copyright 20\d\d(-20\d\d)? Datadog, Inc\.$`)
)

func main() {
	var missing bool
	if err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		// read 1KB, header should be there
		snip := make([]byte, 1024)
		n, err := f.Read(snip)
		if err != nil && err != io.EOF {
			return err
		}
		snip = snip[:n]
		if !bytes.Contains(snip, licenseText) || !copyrightLine.Match(snip) {
			missing = true
			log.Printf("Copyright header missing in %q.\n", path)
		}
		return nil
	}); err != nil {
		log.Fatal(err)
	}
	if missing {
		// some files are missing the header, exit code 1 to fail CI
		os.Exit(1)
	}
}
