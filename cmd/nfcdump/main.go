// go-pn53x
// Copyright (c) 2025 The go-pn53x Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// nfcdump connects to a single reader, selects one passive target, and
// prints its decoded descriptor, the way the teacher's cmd/readtag prints
// a DebugInfo() dump after detection -- generalized across modulation
// families instead of one tag-library type.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	pn53x "github.com/nxp-rdlib/go-pn53x"
	"github.com/nxp-rdlib/go-pn53x/target"

	_ "github.com/nxp-rdlib/go-pn53x/transport/acr122"
	_ "github.com/nxp-rdlib/go-pn53x/transport/arygon"
	_ "github.com/nxp-rdlib/go-pn53x/transport/pn532uart"
	_ "github.com/nxp-rdlib/go-pn53x/transport/pn53xusb"
)

func main() {
	conn := flag.String("device", "", "connection string (e.g. pn53x_usb:, acr122:pcsc); empty auto-detects")
	timeout := flag.Duration("timeout", 10*time.Second, "target selection timeout")
	modulation := flag.String("modulation", "iso14443a", "modulation to poll for: iso14443a, iso14443b, felica, jewel")
	flag.Parse()

	if err := pn53x.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = pn53x.Exit() }()

	dev, err := pn53x.Open(*conn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = dev.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if fv, err := dev.GetFirmwareVersion(ctx); err == nil {
		fmt.Printf("chip: %s (IC=0x%02X Ver=%d.%d)\n", dev.Chip(), fv.IC, fv.Version, fv.Revision)
	} else {
		fmt.Fprintf(os.Stderr, "GetFirmwareVersion: %v\n", err)
	}

	if err := dev.InitiatorInit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "InitiatorInit: %v\n", err)
		os.Exit(1)
	}

	m, err := modulationFor(*modulation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	tgt, err := dev.SelectPassiveTarget(ctx, m, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "no target found: %v\n", err)
		os.Exit(1)
	}

	printTarget(tgt)
}

func modulationFor(name string) (pn53x.Modulation, error) {
	switch name {
	case "iso14443a":
		return pn53x.Modulation{Type: pn53x.ModISO14443A, Baud: pn53x.Baud106}, nil
	case "iso14443b":
		return pn53x.Modulation{Type: pn53x.ModISO14443B, Baud: pn53x.Baud106}, nil
	case "felica":
		return pn53x.Modulation{Type: pn53x.ModFeliCa, Baud: pn53x.Baud212}, nil
	case "jewel":
		return pn53x.Modulation{Type: pn53x.ModJewel, Baud: pn53x.Baud106}, nil
	default:
		return pn53x.Modulation{}, fmt.Errorf("unknown modulation %q", name)
	}
}

func printTarget(tgt *target.Target) {
	fmt.Printf("target: Tg=%d Kind=%s\n", tgt.Tg, tgt.Kind)
	switch tgt.Kind {
	case target.KindISO14443A:
		t := tgt.ISO14443A
		fmt.Printf("  ATQA=%X SAK=%02X UID=%X ATS=%X\n", t.ATQA, t.SAK, t.UID, t.ATS)
	case target.KindISO14443B:
		t := tgt.ISO14443B
		fmt.Printf("  ATQB=%X ID=%X ProtocolInfo=%X INF=%X\n", t.ATQB, t.ID, t.ProtocolInfo, t.INF)
	case target.KindFeliCa:
		t := tgt.FeliCa
		fmt.Printf("  NFCID2=%X Pad=%X SystemCode=%X\n", t.NFCID2, t.Pad, t.SystemCode)
	case target.KindJewel:
		t := tgt.Jewel
		fmt.Printf("  SensRes=%X ID=%X\n", t.SensRes, t.ID)
	case target.KindDEP:
		t := tgt.DEP
		fmt.Printf("  NFCID3=%X DID=%d BS=%d BR=%d GeneralBytes=%X\n", t.NFCID3, t.DID, t.BS, t.BR, t.GeneralBytes)
	}
}
