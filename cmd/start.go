package cmd

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"github.com/spf13/cobra"

	"firestige.xyz/sipcore"
	"firestige.xyz/sipcore/internal/config"
	"firestige.xyz/sipcore/internal/log"
	"firestige.xyz/sipcore/pkg/render"
)

var pcapFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Replay a pcap file through the dialog core and print the resulting calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStart(pcapFile, configFile)
	},
}

func init() {
	startCmd.Flags().StringVarP(&pcapFile, "pcap", "p", "", "offline pcap file to replay (required)")
	_ = startCmd.MarkFlagRequired("pcap")
}

func runStart(pcapPath, cfgPath string) error {
	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	logCfg := &log.LoggerConfig{
		Pattern: cfg.Log.Pattern,
		Time:    cfg.Log.Time,
		Level:   cfg.Log.Level,
	}
	if cfg.Log.File.Enabled {
		logCfg.OutFile = &log.FileAppenderOpt{
			Filename:   cfg.Log.File.Filename,
			MaxSize:    cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAge:     cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		}
	}
	log.Init(logCfg)

	core, err := sipcore.Init(toCaptureOpts(cfg.Capture), toMatchOpts(cfg.Match), toSortOpts(cfg.Sort))
	if err != nil {
		return fmt.Errorf("init dialog core: %w", err)
	}

	if err := replay(pcapPath, core); err != nil {
		return fmt.Errorf("replay %s: %w", pcapPath, err)
	}

	printSummary(core)
	return nil
}

// replay is the demo capture frontend: it decodes every packet in an
// offline pcap file into a sipcore.Packet and hands it to Core.Ingest.
// It never imports internal/dialog or internal/sip directly, only the
// boundary types sipcore re-exports.
func replay(path string, core *sipcore.Core) error {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return err
	}
	defer handle.Close()

	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for packet := range source.Packets() {
		pkt, ok := toSIPPacket(packet)
		if !ok {
			continue
		}
		core.Ingest(pkt)
	}
	return nil
}

func toSIPPacket(packet gopacket.Packet) (sipcore.Packet, bool) {
	app := packet.ApplicationLayer()
	if app == nil || len(app.Payload()) == 0 {
		return sipcore.Packet{}, false
	}

	var srcIP, dstIP netip.Addr
	if net := packet.NetworkLayer(); net != nil {
		srcIP, _ = netip.AddrFromSlice(net.NetworkFlow().Src().Raw())
		dstIP, _ = netip.AddrFromSlice(net.NetworkFlow().Dst().Raw())
	}

	var srcPort, dstPort uint16
	transport := sipcore.TransportUDP
	switch t := packet.TransportLayer().(type) {
	case *layers.TCP:
		srcPort, dstPort = uint16(t.SrcPort), uint16(t.DstPort)
		transport = sipcore.TransportTCP
	case *layers.UDP:
		srcPort, dstPort = uint16(t.SrcPort), uint16(t.DstPort)
		transport = sipcore.TransportUDP
	default:
		return sipcore.Packet{}, false
	}

	ts := packet.Metadata().Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	return sipcore.Packet{
		Source:      sipcore.Endpoint{Addr: srcIP, Port: srcPort},
		Destination: sipcore.Endpoint{Addr: dstIP, Port: dstPort},
		Transport:   transport,
		Timestamp:   ts,
		Payload:     app.Payload(),
	}, true
}

func printSummary(core *sipcore.Core) {
	stats := core.Stats()
	fmt.Printf("calls: total=%d displayed=%d dropped=%d\n", stats.Total, stats.Displayed, core.Dropped())
	for _, call := range core.CallsIterator() {
		fmt.Println(render.MsgHeader(call.Messages[0]), "-", sipcore.GetAttribute(call, sipcore.AttrIDFromName("CALLID")))
	}
}

func toCaptureOpts(c config.CaptureConfig) sipcore.CaptureOpts {
	idle, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		idle = 30 * time.Second
	}
	return sipcore.CaptureOpts{
		Limit:   c.Limit,
		Rotate:  c.Rotate,
		RTP:     c.RTP,
		OutFile: c.OutFile,
		Idle:    idle,
	}
}

func toMatchOpts(m config.MatchConfig) sipcore.MatchOpts {
	return sipcore.MatchOpts{
		Invite:   m.Invite,
		Complete: m.Complete,
		MExpr:    m.MExpr,
		MInvert:  m.MInvert,
		MICase:   m.MICase,
	}
}

func toSortOpts(s config.SortConfig) sipcore.SortOpts {
	return sipcore.SortOpts{By: sipcore.AttrIDFromName(s.By), Asc: s.Asc}
}
