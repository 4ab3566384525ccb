// Package config loads the transformation catalog from the daemon's
// configuration file: one "<name> <capacity>" line per transformation,
// consumed in order, the line's index becoming the transformation's
// catalog id (spec.md §6).
//
// A bufio.Scanner is used rather than a structured-config library
// (viper, toml, yaml) because the wire format here is neither
// key/value nor nested - it is a fixed two-field line format that
// predates (and must stay compatible with) the original C server's
// config.c. See DESIGN.md for why no pack library fits this format
// better than the standard library.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/SLP25/SDStore/internal/catalog"
)

// Load reads a configuration file and builds the transformation
// catalog from it. Parsing stops at the first blank line, which ends
// the list; a line without exactly two fields, or with a capacity that
// is not a non-negative integer, is an error.
func Load(path string) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: open")
	}
	defer f.Close()

	entries, err := parse(f)
	if err != nil {
		return nil, errors.Wrap(err, "config: parse")
	}
	return catalog.New(entries), nil
}

func parse(r io.Reader) ([]catalog.Entry, error) {
	var entries []catalog.Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			break
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("config: malformed line %q", line)
		}

		capacity, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Wrapf(err, "config: invalid capacity in line %q", line)
		}
		if capacity < 0 {
			return nil, fmt.Errorf("config: negative capacity in line %q", line)
		}

		entries = append(entries, catalog.Entry{Name: fields[0], Capacity: capacity})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
