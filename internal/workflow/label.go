package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// LabelSize is the edge length in pixels of a packaging label.
const LabelSize = 256

// LabelContent is the text encoded into a packaging label.
func LabelContent(id, woNumber, team string, qty float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PKG:%s\n", id)
	fmt.Fprintf(&b, "WO:%s\n", woNumber)
	if team != "" {
		fmt.Fprintf(&b, "TEAM:%s\n", team)
	}
	fmt.Fprintf(&b, "QTY:%g", qty)
	return b.String()
}

// PackagingLabel renders a PNG QR code identifying a packaging record.
func (s *Service) PackagingLabel(ctx context.Context, id string) ([]byte, error) {
	rec, err := s.store.PackagingRecords.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	qr, err := qrcode.New(LabelContent(rec.ID, rec.WONumber, rec.PackagingTeam, rec.PackedQty), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	qr.DisableBorder = false
	png, err := qr.PNG(LabelSize)
	if err != nil {
		return nil, fmt.Errorf("encode label %s: %w", id, err)
	}
	return png, nil
}
