package inspect

import (
	"encoding/hex"
	"fmt"
	"github.com/ValentinKolb/dMsg/cmd/util"
	"github.com/ValentinKolb/dMsg/lib/message"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

// InspectCmd prints the sample schema and its wire format
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect the wire format of the sample message type",
	Long: `Print the sample message schema, the signature of every field and a hex dump of an encoded sample message.
With --decode a hex encoded payload is decoded instead and the resulting message is printed.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return util.BindCommandFlags(cmd)
	},
	RunE: run,
}

func init() {
	util.SetupCodecFlags(InspectCmd)

	key := "payload-size"
	InspectCmd.Flags().Int(key, 16, util.WrapString("Size of the byte sequence payload of the sample message (in bytes)"))
	key = "decode"
	InspectCmd.Flags().String(key, "", util.WrapString("Hex encoded payload to decode as a sample message"))
}

func run(cmd *cobra.Command, _ []string) error {
	codec, err := util.NewCodec(util.GetCodecConfig())
	if err != nil {
		return err
	}
	header, sample := util.SampleSchemas()
	out := cmd.OutOrStdout()

	if payload := viper.GetString("decode"); payload != "" {
		data, err := hex.DecodeString(strings.Join(strings.Fields(payload), ""))
		if err != nil {
			return fmt.Errorf("invalid hex payload: %v", err)
		}

		msg := message.NewFields(sample)
		if err := codec.Decode(data, msg); err != nil {
			return err
		}
		fmt.Fprintln(out, msg.String())
		return nil
	}

	fmt.Fprint(out, header.String())
	fmt.Fprint(out, sample.String())
	fmt.Fprintln(out)

	msg, err := util.SampleMessage(header, sample, viper.GetInt("payload-size"))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Signatures:")
	for _, sig := range msg.Signatures() {
		fmt.Fprintf(out, "  %s", sig)
	}
	fmt.Fprintln(out)

	encoded := codec.Encode(msg)
	fmt.Fprintf(out, "Encoded (%d bytes, hash %016x):\n", len(encoded), msg.Hash())
	fmt.Fprint(out, hex.Dump(encoded))
	return nil
}
