// Command pdbextract fetches structure records from the RCSB Protein Data
// Bank for one experimental method and writes them to a CSV file, optionally
// filtered by resolution and optionally condensed to one row per PDB ID.
// Intended to be run from cron, but works fine by hand (see -h).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/calkins-dav/pdb-extraction-tool/pkg/condense"
	"github.com/calkins-dav/pdb-extraction-tool/pkg/fieldmap"
	"github.com/calkins-dav/pdb-extraction-tool/pkg/output"
	"github.com/calkins-dav/pdb-extraction-tool/pkg/rcsb"
	"github.com/calkins-dav/pdb-extraction-tool/pkg/table"
)

const (
	defaultOutput = "PDB_extract-out.csv"
	defaultMethod = "ELECTRON MICROSCOPY"
)

// expMethods are the experimental techniques the search endpoint accepts.
var expMethods = []string{
	"X-RAY",
	"SOLUTION NMR",
	"SOLID-STATE NMR",
	"ELECTRON MICROSCOPY",
	"ELECTRON CRYSTALLOGRAPHY",
	"FIBER DIFFRACTION",
	"NEUTRON DIFFRACTION",
	"SOLUTION SCATTERING",
	"OTHER",
	"HYBRID",
}

func main() {
	outFlag := flag.String("outfile", defaultOutput, "name of the output CSV file")
	methodFlag := flag.String("method", defaultMethod, "experimental technique used to obtain the structures")
	minResFlag := flag.Float64("min-res", 0, "keep only structures with resolution at or below this value in Angstroms (0 disables the filter)")
	condensedFlag := flag.Bool("condensed", false, "also write a condensed CSV with one row per PDB ID")
	fieldsFlag := flag.String("fields", "", "optional YAML file overriding the default field mapping")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar().With("run_id", uuid.NewString())

	if filepath.Ext(*outFlag) != ".csv" {
		sugar.Fatalf("output file %s must have a *.csv extension (CSV format)", *outFlag)
	}
	if !validMethod(*methodFlag) {
		sugar.Fatalf("unknown method %q (choose one of: %s)", *methodFlag, strings.Join(expMethods, ", "))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Optional .env; the only setting read from the environment is the
	// service base URL, mainly for pointing runs at a mirror.
	_ = godotenv.Load()

	m := fieldmap.Default()
	if *fieldsFlag != "" {
		m, err = fieldmap.Load(*fieldsFlag)
		if err != nil {
			sugar.Fatalf("load field mapping: %v", err)
		}
	}

	client := rcsb.NewClient(os.Getenv("PDB_BASE_URL"), sugar)

	ids, err := client.ListIdentifiers(ctx, *methodFlag)
	if err != nil {
		sugar.Fatalf("identifier search failed: %v", err)
	}

	raw, err := client.FetchRecords(ctx, ids, m.Keys())
	if err != nil {
		sugar.Fatalf("record fetch failed: %v", err)
	}

	tbl, err := table.Build(raw, m)
	if err != nil {
		sugar.Fatalf("build table: %v", err)
	}

	if *minResFlag > 0 {
		sugar.Infof("filtering out PDB structures with resolution > %.1f Angstroms", *minResFlag)
		tbl, err = tbl.FilterByResolution(m.ResolutionColumn(), *minResFlag)
		if err != nil {
			sugar.Fatalf("resolution filter: %v", err)
		}
	}

	if err := output.WriteCSV(tbl, *outFlag); err != nil {
		sugar.Fatalf("write output: %v", err)
	}
	sugar.Infow("output CSV written",
		"path", *outFlag,
		"rows", len(tbl.Rows),
		"run_time", time.Now().Format("2006-01-02 15:04:05"),
		"latest_release", latestReleaseDate(tbl, m),
	)

	if *condensedFlag {
		cond, err := condense.Condense(tbl, m)
		if err != nil {
			sugar.Fatalf("condense: %v", err)
		}
		cond = condense.Reorder(cond, m.CondensedLayout())

		name := filepath.Join(filepath.Dir(*outFlag), "CONDENSED_"+filepath.Base(*outFlag))
		if err := output.WriteCSV(cond, name); err != nil {
			sugar.Fatalf("write condensed output: %v", err)
		}
		sugar.Infow("condensed CSV written", "path", name, "rows", len(cond.Rows))
	}

	fmt.Println("Extraction complete.")
}

func validMethod(method string) bool {
	for _, m := range expMethods {
		if m == method {
			return true
		}
	}
	return false
}

// latestReleaseDate returns the most recent release date present in the
// table, for the post-run summary. Unparseable or missing dates are skipped.
func latestReleaseDate(t table.Table, m fieldmap.Mapping) string {
	values, err := t.Column(m.ReleaseDateColumn())
	if err != nil {
		return ""
	}
	var latest time.Time
	for _, v := range values {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(v))
		if err != nil {
			continue
		}
		if d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return ""
	}
	return latest.Format("2006-01-02")
}
