package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zxhio/tapresp/internal/config"
	"github.com/zxhio/tapresp/internal/responder"
	"github.com/zxhio/tapresp/pkg/fastpkt"
	"github.com/zxhio/tapresp/pkg/netaddr"
	"github.com/zxhio/tapresp/pkg/utils"
)

var decodeOpts struct {
	hwAddr netaddr.HwAddr
	ip     netaddr.IPv4Addr
}

var decodeCmd = cobra.Command{
	Use:   "decode HEX...",
	Short: "Decode a frame and show the reply it gets",
	Example: `  tapresp decode ffffffffffff aabbccddeeff 0806 0001 0800 0604 0001 \
      aabbccddeeff 0a0a0a32 000000000000 0a0a0a05`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rx, err := parseHexFrame(args)
		utils.CheckErrorAndExit(err, "Check invalid frame")

		id := responder.Identity{HwAddr: decodeOpts.hwAddr, IPv4: decodeOpts.ip}
		decodeFrame(os.Stdout, id, rx)
	},
}

func init() {
	decodeOpts.hwAddr, _ = netaddr.ParseHwAddr(config.DefaultHwAddr)
	decodeOpts.ip, _ = netaddr.ParseIPv4Addr(config.DefaultIP)

	disableSort(&decodeCmd)
	decodeCmd.Flags().Var(&decodeOpts.hwAddr, "hwaddr", "Mac address to answer for")
	decodeCmd.Flags().Var(&decodeOpts.ip, "ip", "Ip address to answer for")
}

// parseHexFrame joins args into one hex string, separators ' ' ':' '-' and
// an optional 0x prefix per arg are ignored.
func parseHexFrame(args []string) ([]byte, error) {
	var sb strings.Builder
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.ToLower(arg), "0x")
		arg = strings.NewReplacer(" ", "", ":", "", "-", "", "\n", "", "\t", "").Replace(arg)
		sb.WriteString(arg)
	}

	data, err := hex.DecodeString(sb.String())
	if err != nil {
		return nil, errors.Wrap(err, "hex.DecodeString")
	}
	if len(data) == 0 {
		return nil, errors.New("empty frame")
	}
	return data, nil
}

func decodeFrame(w io.Writer, id responder.Identity, rx []byte) responder.Verdict {
	r := responder.New(id)
	reply, verdict := r.Handle(rx, make([]byte, 0, len(rx)))

	fmt.Fprintf(w, "RX %d bytes\n%s\n", len(rx), fastpkt.Format(rx, fastpkt.WithFormatEthernet()))
	fmt.Fprintf(w, "VERDICT %s\n", verdict)
	if len(reply) > 0 {
		fmt.Fprintf(w, "TX %d bytes\n%s\n", len(reply), fastpkt.Format(reply, fastpkt.WithFormatEthernet()))
		fmt.Fprint(w, hex.Dump(reply))
	}
	return verdict
}
