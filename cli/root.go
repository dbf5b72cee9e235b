package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/wokdav/minirsa/generator"
	"github.com/wokdav/minirsa/generator/config"
	"github.com/wokdav/minirsa/generator/dcrypto/prime"
	"github.com/wokdav/minirsa/generator/dcrypto/random"
	"github.com/wokdav/minirsa/logging"

	"github.com/spf13/cobra"
)

// newRootCmd builds the base command and all of its subcommands.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minirsa",
		Short: "Word sized RSA key generation and encryption",
		Long: `minirsa generates RSA keys whose modulus fits into a single
32 or 64 bit machine word, using nothing but overflow-safe
modular arithmetic on that word.

The keys are far too small to protect anything. They exist to
show how key generation, primality testing and the RSA primitive
work without arbitrary precision integers.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				logging.Initialize(logging.LevelDebug, nil, nil)
			} else if verbose {
				logging.Initialize(logging.LevelInfo, nil, nil)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "a LOT more verbose output (overrides -v)")

	cmd.AddCommand(newKeygenCmd())
	cmd.AddCommand(newDemoCmd())
	cmd.AddCommand(newTransformCmd())
	cmd.AddCommand(newIsPrimeCmd())
	cmd.AddCommand(newDocCmd())

	return cmd
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

type keygenContext struct {
	configFile *string
	seed       *int64
	width      *int
}

var verbose bool
var debug bool

// defaultMessage is the plaintext of the demo when none is given.
var defaultMessage = []byte{0x12, 0x34, 0x56, 0x78}

// loadConfig builds the key generation config from the config file (if any)
// and the flags, which take precedence.
func (k keygenContext) loadConfig(cmd *cobra.Command) (config.KeygenConfig, error) {
	cfg := generator.DefaultConfig()
	if *k.configFile != "" {
		c, err := generator.LoadConfig(*k.configFile)
		if err != nil {
			return cfg, err
		}
		cfg = *c

		if !verbose && !debug {
			logging.Initialize(cfg.LogLevel, nil, nil)
		}
	}

	if cmd.Flags().Changed("seed") {
		seed := *k.seed
		cfg.Seed = &seed
	}
	if cmd.Flags().Changed("width") {
		cfg.Width = *k.width
	}

	return cfg, cfg.Check()
}

func addKeygenFlags(cmd *cobra.Command) keygenContext {
	return keygenContext{
		configFile: cmd.Flags().StringP("config", "c", "", "key generation config file (see 'doc example')"),
		seed:       cmd.Flags().Int64P("seed", "s", 0, "seed for the random source (default: wall clock)"),
		width:      cmd.Flags().IntP("width", "w", config.Width32, "key width in bits (32 or 64)"),
	}
}

func parseWord(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not an unsigned 64 bit integer", s)
	}
	return v, nil
}

func printKey(cmd *cobra.Command, k *generator.Key) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "seed : %d\n", k.Seed)
	fmt.Fprintf(out, "p : %d\nq : %d\ne : %d\nd : %d\nN : %d\n", k.P, k.Q, k.E, k.D, k.N)
}

func newKeygenCmd() *cobra.Command {
	var ctx keygenContext
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a keypair",
		Long:  "Generates a keypair and prints both primes, both exponents and the modulus.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig(cmd)
			if err != nil {
				return err
			}

			k, err := generator.GenerateKey(cfg)
			if err != nil {
				return err
			}

			printKey(cmd, k)
			return nil
		},
	}
	ctx = addKeygenFlags(cmd)

	return cmd
}

func newDemoCmd() *cobra.Command {
	var ctx keygenContext
	var message *string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Encrypt and decrypt a message with a fresh keypair",
		Long: `Generates a keypair, encrypts the message with the public exponent,
decrypts the ciphertext with the private exponent and reports whether
the result matches the message.

A message that fits into one word below the modulus is encrypted as a
single little-endian word. Longer messages are split into 3 byte blocks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig(cmd)
			if err != nil {
				return err
			}

			msg := defaultMessage
			if cmd.Flags().Changed("message") {
				msg = []byte(*message)
			}

			r, err := generator.EncryptDecrypt(cfg, msg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printKey(cmd, r.Key)
			fmt.Fprintf(out, "\n1. plain text : %x\n", r.Plaintext)
			fmt.Fprintf(out, "2. encrypted plain text : %x\n", r.Ciphertext)
			fmt.Fprintf(out, "3. decrypted plain text : %x\n\n", r.Decrypted)

			if !r.Success(msg) {
				fmt.Fprintln(out, "RSA Decryption: FAILURE!")
				return fmt.Errorf("decrypted message %x does not match %x", r.Message, msg)
			}
			fmt.Fprintln(out, "RSA Decryption: SUCCESS!")
			return nil
		},
	}
	ctx = addKeygenFlags(cmd)
	message = cmd.Flags().StringP("message", "m", "", "message to encrypt (default: the bytes 12 34 56 78)")

	return cmd
}

func newTransformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform <data> <key> <n>",
		Short: "Compute data^key mod n",
		Long: `Applies the RSA primitive once. Use the public exponent to encrypt
and the private exponent to decrypt. Numbers may be given in decimal,
or in hex with a 0x prefix.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var w [3]uint64
			for i, a := range args {
				var err error
				w[i], err = parseWord(a)
				if err != nil {
					return err
				}
			}

			r, err := generator.Transform(w[0], w[1], w[2])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), r)
			return nil
		},
	}
}

func newIsPrimeCmd() *cobra.Command {
	var rounds *int
	var seed *int64
	cmd := &cobra.Command{
		Use:   "isprime <n>",
		Short: "Run the Miller-Rabin test on a number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if *rounds < 1 {
				return fmt.Errorf("at least one Miller-Rabin round is required, got %d", *rounds)
			}

			n, err := parseWord(args[0])
			if err != nil {
				return err
			}

			src, s := random.NewTimeSeeded()
			if cmd.Flags().Changed("seed") {
				src, s = random.New(*seed), *seed
			}
			logging.Debugf("seeding random source with %d", s)

			if prime.IsPrime(n, *rounds, src) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d may be prime.\n", n)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d is not prime.\n", n)
			}
			return nil
		},
	}
	rounds = cmd.Flags().IntP("rounds", "r", prime.DefaultRounds, "Miller-Rabin rounds")
	seed = cmd.Flags().Int64P("seed", "s", 0, "seed for the witnesses (default: wall clock)")

	return cmd
}

func newDocCmd() *cobra.Command {
	cmdDoc := &cobra.Command{
		Use:   "doc",
		Short: "Show Documentation",
		Long:  "Get help on various topics.",
	}

	cmdDoc.AddCommand(&cobra.Command{
		Use:   "example",
		Short: "Show an example config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.GetConfigurator(1)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), c.Example())
			return nil
		},
	})

	return cmdDoc
}
