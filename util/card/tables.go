/*
 * microsim360 - card code translation tables.
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package card

// IBM 029 keypunch codes, EBCDIC ASCII subset. Indexed by ASCII value.
var asciiToHol29 = [128]uint16{
	0xf000, 0xf000, 0x0881, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000,
	0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000,
	0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000,
	0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000, 0xf000,
	0x000, 0x482, 0x006, 0x042, 0x442, 0x222, 0x800, 0x012, /* 40 - 77 */
	0x812, 0x412, 0x422, 0x80A, 0x242, 0x400, 0x842, 0x300,
	0x200, 0x100, 0x080, 0x040, 0x020, 0x010, 0x008, 0x004,
	0x002, 0x001, 0x082, 0x40A, 0x822, 0x00A, 0x20A, 0x206,
	0x022, 0x900, 0x880, 0x840, 0x820, 0x810, 0x808, 0x804, /* 100 - 137 */
	0x802, 0x801, 0x500, 0x480, 0x440, 0x420, 0x410, 0x408,
	0x404, 0x402, 0x401, 0x280, 0x240, 0x220, 0x210, 0x208,
	0x204, 0x202, 0x201, 0xE82, 0x282, 0xE42, 0x406, 0x212,
	0x102, 0xB00, 0xA80, 0xA40, 0xA20, 0xA10, 0xA08, 0xA04, /* 140 - 177 */
	0xA02, 0xA01, 0xD00, 0xC80, 0xC40, 0xC20, 0xC10, 0xC08,
	0xC04, 0xC02, 0xC01, 0x680, 0x640, 0x620, 0x610, 0x608,
	0x604, 0x602, 0x601, 0x406, 0x806, 0x805, 0xF02, 0xf000,
}

// IBM EBCDIC codes to IBM Hollerith punch codes. Indexed by EBCDIC byte.
var ebcdicToHolTable = [256]uint16{
	0xB03, 0x901, 0x881, 0x841, 0x821, 0x811, 0x809, 0x805,
	0x803, 0x903, 0x883, 0x843, 0x823, 0x813, 0x80B, 0x807,
	0xD03, 0x501, 0x481, 0x441, 0x421, 0x411, 0x409, 0x405,
	0x403, 0x503, 0x483, 0x443, 0x423, 0x413, 0x40B, 0x407,
	0x703, 0x301, 0x281, 0x241, 0x221, 0x211, 0x209, 0x205,
	0x203, 0x303, 0x283, 0x243, 0x223, 0x213, 0x20B, 0x207,
	0xF03, 0x101, 0x081, 0x041, 0x021, 0x011, 0x009, 0x005,
	0x003, 0x103, 0x083, 0x043, 0x023, 0x013, 0x00B, 0x007,
	0x000, 0xB01, 0xA81, 0xA41, 0xA21, 0xA11, 0xA09, 0xA05,
	0xA03, 0x902, 0x882, 0x842, 0x822, 0x812, 0x80A, 0x806,
	0x800, 0xD01, 0xC81, 0xC41, 0xC21, 0xC11, 0xC09, 0xC05,
	0xC03, 0x502, 0x482, 0x442, 0x422, 0x412, 0x40A, 0x406,
	0x400, 0x300, 0x681, 0x641, 0x621, 0x611, 0x609, 0x605,
	0x603, 0x302, 0xC00, 0x242, 0x222, 0x212, 0x20A, 0x206,
	0xE00, 0xF01, 0xE81, 0xE41, 0xE21, 0xE11, 0xE09, 0xE05,
	0xE03, 0x102, 0x082, 0x042, 0x022, 0x012, 0x00A, 0x006,
	0xB02, 0xB00, 0xA80, 0xA40, 0xA20, 0xA10, 0xA08, 0xA04,
	0xA02, 0xA01, 0xA82, 0xA42, 0xA22, 0xA12, 0xA0A, 0xA06,
	0xD02, 0xD00, 0xC80, 0xC40, 0xC20, 0xC10, 0xC08, 0xC04,
	0xC02, 0xC01, 0xC82, 0xC42, 0xC22, 0xC12, 0xC0A, 0xC06,
	0x702, 0x700, 0x680, 0x640, 0x620, 0x610, 0x608, 0x604,
	0x602, 0x601, 0x682, 0x642, 0x622, 0x612, 0x60A, 0x606,
	0xF02, 0xF00, 0xE80, 0xE40, 0xE20, 0xE10, 0xE08, 0xE04,
	0xE02, 0xE01, 0xE82, 0xE42, 0xE22, 0xE12, 0xE0A, 0xE06,
	0xA00, 0x900, 0x880, 0x840, 0x820, 0x810, 0x808, 0x804,
	0x802, 0x801, 0xA83, 0xA43, 0xA23, 0xA13, 0xA0B, 0xA07,
	0x600, 0x500, 0x480, 0x440, 0x420, 0x410, 0x408, 0x404,
	0x402, 0x401, 0xC83, 0xC43, 0xC23, 0xC13, 0xC0B, 0xC07,
	0x282, 0x701, 0x280, 0x240, 0x220, 0x210, 0x208, 0x204,
	0x202, 0x201, 0x683, 0x643, 0x623, 0x613, 0x60B, 0x607,
	0x200, 0x100, 0x080, 0x040, 0x020, 0x010, 0x008, 0x004,
	0x002, 0x001, 0xE83, 0xE43, 0xE23, 0xE13, 0xE0B, 0xE07,
}

// Reverse tables, built once from the forward tables above.
var (
	holToASCIITable [4096]uint8
	holToEBCDICTable [4096]uint16
)

func init() {
	for i := range holToASCIITable {
		holToASCIITable[i] = '.'
	}
	for a, hol := range asciiToHol29 {
		if hol == 0xf000 {
			continue
		}
		holToASCIITable[hol&0xfff] = uint8(a)
	}
	for e, hol := range ebcdicToHolTable {
		holToEBCDICTable[hol&0xfff] = uint16(e)
	}
}
