package symtab

// Built-in register, bit, and vector definitions for the supported
// parts. A user include file layers on top of these.

// Part8051 returns the stock 8051 definitions.
func Part8051() *Table {
	t := New()

	for addr, name := range map[uint16]string{
		0x0000: "RESET",
		0x0003: "EXTI0",
		0x000B: "TIMER0",
		0x0013: "EXTI1",
		0x001B: "TIMER1",
		0x0023: "SINT",
	} {
		t.Code[addr] = name
	}

	for addr, name := range map[uint16]string{
		0x80: "P0",
		0x81: "SP",
		0x82: "DPL",
		0x83: "DPH",
		0x87: "PCON",
		0x88: "TCON",
		0x89: "TMOD",
		0x8A: "TL0",
		0x8B: "TL1",
		0x8C: "TH0",
		0x8D: "TH1",
		0x90: "P1",
		0x98: "SCON",
		0x99: "SBUF",
		0xA0: "P2",
		0xA8: "IE",
		0xB0: "P3",
		0xB8: "IP",
		0xD0: "PSW",
		0xE0: "ACC",
		0xF0: "B",
	} {
		t.Data[addr] = name
	}

	// Bit-addressable SFR bits, LSB first within each register.
	bits := map[uint16][]string{
		0x88: {"IT0", "IE0", "IT1", "IE1", "TR0", "TF0", "TR1", "TF1"},
		0x98: {"RI", "TI", "RB8", "TB8", "REN", "SM2", "SM1", "SM0"},
		0xA8: {"EX0", "ET0", "EX1", "ET1", "ES", "", "", "EA"},
		0xB0: {"RXD", "TXD", "INT0", "INT1", "T0", "T1", "WR", "RD"},
		0xB8: {"PX0", "PT0", "PX1", "PT1", "PS"},
		0xD0: {"P", "", "OV", "RS0", "RS1", "F0", "AC", "CY"},
	}
	for base, names := range bits {
		for i, name := range names {
			if name != "" {
				t.Bit[base+uint16(i)] = name
			}
		}
	}
	return t
}

// Part8052 returns the 8052 definitions: the 8051 set plus timer 2.
func Part8052() *Table {
	t := Part8051()
	t.Code[0x002B] = "TIMER2"

	for addr, name := range map[uint16]string{
		0xC8: "T2CON",
		0xCA: "RCAP2L",
		0xCB: "RCAP2H",
		0xCC: "TL2",
		0xCD: "TH2",
	} {
		t.Data[addr] = name
	}
	for i, name := range []string{"CPRL2", "CT2", "TR2", "EXEN2", "TCLK", "RCLK", "EXF2", "TF2"} {
		t.Bit[0xC8+uint16(i)] = name
	}
	return t
}
