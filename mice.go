package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/spf13/cobra"

	"github.com/mice-ics/mice/lib/cluster"
	"github.com/mice-ics/mice/lib/config"
	m_error "github.com/mice-ics/mice/lib/error"
	"github.com/mice-ics/mice/lib/logging"
	"github.com/mice-ics/mice/lib/particles"
	"github.com/mice-ics/mice/lib/snapio"
)

var (
	flagVerbose bool
	flagLogOut string
	flagLogLevel int

	flagOut string
	flagSeed uint64
	flagMOND bool
	flagCompress bool
	flagEps float64
)

func main() {
	root := &cobra.Command{
		Use: "mice",
		Short: "mice generates idealized galaxy-cluster initial " +
			"conditions as Gadget-2 snapshots",
		SilenceUsage: true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"log debug output")
	root.PersistentFlags().StringVar(&flagLogOut, "log-out", "",
		"directory log files are written under; empty disables file logs")
	root.PersistentFlags().IntVar(&flagLogLevel, "log-level", 20,
		"numeric log level: 10 debug, 20 info, 30 warning, 40 error")

	generate := &cobra.Command{
		Use: "generate <scenario.toml>",
		Short: "generate a cluster from a scenario file and write the " +
			"snapshot",
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}
	generate.Flags().StringVarP(&flagOut, "out", "o", "snapshot.dat",
		"output snapshot file")
	generate.Flags().Uint64Var(&flagSeed, "seed", 0,
		"random seed; identical seeds give identical clusters")
	generate.Flags().BoolVarP(&flagMOND, "mond", "M", false,
		"use deep-MOND velocity dispersions for collisionless components")
	generate.Flags().BoolVar(&flagCompress, "compress", false,
		"zstd-compress the snapshot (implied by a .zst output suffix)")
	generate.Flags().Float64Var(&flagEps, "eps", 10.0,
		"softening length in kpc/h used by the virial-ratio diagnostic")

	check := &cobra.Command{
		Use: "check <scenario.toml>",
		Short: "validate a scenario file without generating anything",
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}

	verify := &cobra.Command{
		Use: "verify <snapshot>",
		Short: "read a snapshot back and print its header and block " +
			"inventory",
		Args: cobra.ExactArgs(1),
		RunE: runVerify,
	}

	root.AddCommand(generate, check, verify)

	if err := root.Execute(); err != nil {
		m_error.External("%s", err.Error())
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log, cleanup, err := logging.New(flagLogOut, flagLogLevel, flagVerbose)
	if err != nil { return err }
	defer cleanup()

	sc, err := config.Load(args[0])
	if err != nil { return err }

	set, counts, err := cluster.Generate(sc, cluster.Options{
		MOND: flagMOND, Seed: flagSeed, Log: log,
	})
	if err != nil { return err }

	ids, err := particles.IDs(set.N())
	if err != nil { return err }

	log.Infof("Virial ratio 2T/|W| = %.3f.",
		cluster.VirialRatio(set, flagEps))

	data := &snapio.SnapshotData{
		Pos: set.Pos, Vel: set.Vel, ID: ids, Mass: set.Mass,
		U: set.U, Rho: set.Rho, Hsml: set.Hsml, Metals: set.Metals,
	}

	f, err := os.Create(flagOut)
	if err != nil { return err }
	defer f.Close()

	var w io.Writer = f
	var zw *zstd.Writer
	if flagCompress || strings.HasSuffix(flagOut, ".zst") {
		zw = zstd.NewWriter(f)
		w = zw
	}

	err = snapio.WriteSnapshot(counts, data, w, snapio.Gadget2, sc.Header)
	if err != nil { return err }
	if zw != nil {
		if err := zw.Close(); err != nil { return err }
	}

	log.Infof("Wrote %d particles to %s.", set.N(), flagOut)
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	sc, err := config.Load(args[0])
	if err != nil { return err }

	fmt.Printf("Scenario describes %d components.\n", len(sc.Components))
	fmt.Println("No errors detected.")
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil { return err }
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(args[0], ".zst") {
		zr := zstd.NewReader(f)
		defer zr.Close()
		r = zr
	}

	hd, blocks, err := snapio.ReadSnapshot(r)
	if err != nil { return err }

	fmt.Printf("NPart:       %d\n", hd.NPart)
	fmt.Printf("Mass table:  %g\n", hd.Mass)
	fmt.Printf("Time:        %g\n", hd.Time)
	fmt.Printf("Redshift:    %g\n", hd.Redshift)
	fmt.Printf("BoxSize:     %g\n", hd.BoxSize)
	fmt.Printf("Omega0:      %g  OmegaLambda: %g  h: %g\n",
		hd.Omega0, hd.OmegaLambda, hd.HubbleParam)
	fmt.Printf("Total particles: %d (%d gas)\n", hd.NTot(), hd.NGas())

	fmt.Println("Blocks:")
	for i := range blocks {
		fmt.Printf("  %-4s %10d bytes\n",
			strings.TrimRight(blocks[i].Name, " "), blocks[i].NBytes)
	}

	fmt.Println("No errors detected.")
	return nil
}
