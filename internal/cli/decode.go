package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	polyjson "github.com/reoring/polyjson"
	"github.com/reoring/polyjson/config"
)

// DecodeConfig holds the flags of the decode command.
type DecodeConfig struct {
	ConfigPath  string
	Base        string
	Strict      bool
	Envelope    bool
	EnvelopeKey string
	Driver      string
	Duplicates  string
	MaxDepth    int
	MaxBytes    int64
}

func newDecodeCommand(g *globals) *cobra.Command {
	var cfg DecodeConfig
	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode a JSON object or array and print one line per element",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := "-"
			if len(args) == 1 {
				in = args[0]
			}
			return runDecode(g, &cfg, in, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&cfg.ConfigPath, "config", "", "Path to the registry YAML/JSON file")
	cmd.Flags().StringVar(&cfg.Base, "base", "", "Base shape the input is declared as")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", false, "Run the shapes' validation tags")
	cmd.Flags().BoolVar(&cfg.Envelope, "envelope", false, "Read fields from each element's payload member")
	cmd.Flags().StringVar(&cfg.EnvelopeKey, "envelope-key", polyjson.DefaultEnvelopeKey, "Payload member of envelope elements")
	cmd.Flags().StringVar(&cfg.Driver, "driver", "go-json", "JSON tokenizer: go-json or std")
	cmd.Flags().StringVar(&cfg.Duplicates, "duplicates", "ignore", "Duplicate key handling: ignore, warn or error")
	cmd.Flags().IntVar(&cfg.MaxDepth, "max-depth", 0, "Maximum nesting depth (0 = unlimited)")
	cmd.Flags().Int64Var(&cfg.MaxBytes, "max-bytes", 0, "Maximum input bytes (0 = unlimited)")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("base")
	return cmd
}

type decodedLine struct {
	Type  polyjson.Tag    `json:"type"`
	Value *polyjson.Value `json:"value"`
}

func runDecode(g *globals, cfg *DecodeConfig, in string, stdin io.Reader, stdout io.Writer) error {
	reg, err := config.LoadFile(filepath.Clean(cfg.ConfigPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	g.logf("decode: config=%s bases=%v", cfg.ConfigPath, reg.Bases())

	opt, err := cfg.decodeOpt(g)
	if err != nil {
		return err
	}
	driver, err := driverFor(cfg.Driver)
	if err != nil {
		return err
	}

	r := stdin
	if in != "-" {
		fh, err := os.Open(filepath.Clean(in))
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer fh.Close()
		r = fh
	}
	src := driver.NewReader(bufio.NewReader(r))
	g.logf("decode: input=%s driver=%s base=%s envelope=%v strict=%v", in, driver.Name(), cfg.Base, cfg.Envelope, cfg.Strict)

	dec := polyjson.NewDecoder(reg, opt)
	var lines []decodedLine
	if cfg.Envelope {
		envs, err := dec.DecodeEnvelopes(cfg.Base, src)
		if err != nil {
			return err
		}
		for _, e := range envs {
			lines = append(lines, decodedLine{Type: e.Tag, Value: e.Value})
		}
	} else {
		vals, err := dec.DecodeFrom(cfg.Base, src)
		if err != nil {
			return err
		}
		for _, v := range vals {
			lines = append(lines, decodedLine{Type: v.Tag(), Value: v})
		}
	}

	enc := j.NewEncoder(stdout)
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return err
		}
	}
	g.logf("decode: %d element(s)", len(lines))
	return nil
}

func (cfg *DecodeConfig) decodeOpt(g *globals) (polyjson.DecodeOpt, error) {
	opt := polyjson.DecodeOpt{
		Strict:      cfg.Strict,
		EnvelopeKey: cfg.EnvelopeKey,
		MaxDepth:    cfg.MaxDepth,
		MaxBytes:    cfg.MaxBytes,
	}
	switch cfg.Duplicates {
	case "ignore":
	case "warn":
		opt.Strictness.OnDuplicateKey = polyjson.Warn
		opt.OnWarning = func(is polyjson.Issue) {
			fmt.Fprintf(g.stderr, "warning: %s at %s: %s\n", is.Code, is.Path, is.Hint)
		}
	case "error":
		opt.Strictness.OnDuplicateKey = polyjson.Error
	default:
		return opt, fmt.Errorf("unsupported --duplicates %q", cfg.Duplicates)
	}
	return opt, nil
}

func driverFor(name string) (polyjson.JSONDriver, error) {
	switch name {
	case "go-json":
		return polyjson.GoJSONDriver(), nil
	case "std":
		return polyjson.StdJSONDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported --driver %q", name)
	}
}
