package media

import (
	"errors"
	"fmt"

	"github.com/asticode/go-astiav"

	"github.com/user/unbundle/pkg/av"
)

// PacketInfo describes one demuxed packet without decoding it.
type PacketInfo struct {
	StreamIndex int
	// PTS and DTS are in the stream's time base. Either may be
	// astiav.NoPtsValue when the container does not record it.
	PTS      int64
	DTS      int64
	Duration int64
	Size     int
	Position int64
	Keyframe bool
	// TimeSeconds locates the packet on the presentation timeline,
	// derived from PTS when set and DTS otherwise. -1 when neither is
	// available.
	TimeSeconds float64
}

// Packets demuxes the container from its current position and calls fn for
// every packet. streamIndex restricts iteration to one stream; pass -1 for
// all streams. Iteration stops early when fn returns false.
//
// Packets consumes the demuxer position. Extraction operations seek before
// decoding, so interleaving them with Packets on the same handle is safe
// but not concurrent.
func (f *File) Packets(streamIndex int, fn func(PacketInfo) bool) error {
	if f.closed() {
		return ErrClosed
	}

	pkt := astiav.AllocPacket()
	defer pkt.Free()

	for {
		if err := f.fc.ReadFrame(pkt); err != nil {
			if errors.Is(err, astiav.ErrEof) {
				return nil
			}
			return fmt.Errorf("%w: reading packet: %v", ErrDecode, err)
		}

		if streamIndex >= 0 && pkt.StreamIndex() != streamIndex {
			pkt.Unref()
			continue
		}

		info := packetInfo(f.fc, pkt)
		pkt.Unref()

		if !fn(info) {
			return nil
		}
	}
}

func packetInfo(fc *astiav.FormatContext, pkt *astiav.Packet) PacketInfo {
	info := PacketInfo{
		StreamIndex: pkt.StreamIndex(),
		PTS:         pkt.Pts(),
		DTS:         pkt.Dts(),
		Duration:    pkt.Duration(),
		Size:        pkt.Size(),
		Position:    pkt.Pos(),
		Keyframe:    pkt.Flags().Has(astiav.PacketFlagKey),
		TimeSeconds: -1,
	}

	tb := fc.Streams()[pkt.StreamIndex()].TimeBase()
	switch {
	case info.PTS != astiav.NoPtsValue:
		info.TimeSeconds = av.PtsSeconds(info.PTS, tb)
	case info.DTS != astiav.NoPtsValue:
		info.TimeSeconds = av.PtsSeconds(info.DTS, tb)
	}

	return info
}
