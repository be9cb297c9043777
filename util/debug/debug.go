/*
 * microsim360 - mask-gated debug tracing to a file.
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

package debug

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	config "github.com/rcornwell/microsim360/config/configparser"
)

var logFile *os.File

// Debugf writes a mask-gated trace line tagged with module.
func Debugf(module string, mask int, level int, format string, a ...interface{}) {
	if (mask & level) != 0 {
		fmt.Fprintf(logFile, module+": "+format+"\n", a...)
	}
}

// DebugDevf writes a mask-gated trace line tagged with a device address.
func DebugDevf(devNum uint16, mask int, level int, format string, a ...interface{}) {
	if (mask & level) != 0 {
		dev := strconv.FormatUint(uint64(devNum), 16)
		fmt.Fprintf(logFile, dev+": "+format+"\n", a...)
	}
}

// DebugChanf writes a mask-gated trace line tagged with a channel number.
func DebugChanf(number int, mask int, level int, format string, a ...interface{}) {
	if (mask & level) != 0 {
		ch := strconv.FormatInt(int64(number), 10)
		fmt.Fprintf(logFile, "Channel "+ch+": "+format+"\n", a...)
	}
}

// busTagNames gives the 16 bus/tag lines in MSB-first bit order, matching
// internal/bustag's line layout. A nil entry marks an unused bit.
var busTagNames = [16]string{
	"SLO", "ADO", "CMD", "SRO", "SUP", "HLD", "OPO", "",
	"OPI", "ADI", "STI", "SVI", "RQI", "", "", "",
}

// TagString renders the asserted bus/tag lines for a trace line, one fixed
// width column per possible tag so traces align across cycles.
func TagString(tags uint16, busOut uint16) string {
	var b strings.Builder
	fmt.Fprintf(&b, "bus=%03x %04x ", busOut, tags)
	for i, name := range busTagNames {
		if name == "" {
			continue
		}
		if tags&(0x8000>>uint(i)) != 0 {
			b.WriteString(name)
			b.WriteByte(' ')
		} else {
			b.WriteString("    ")
		}
	}
	return b.String()
}

// DebugTagsf writes a mask-gated bus/tag trace line for a device, the Go
// equivalent of the original simulator's print_tags.
func DebugTagsf(devNum uint16, state string, mask int, level int, tags uint16, busOut uint16) {
	if (mask & level) != 0 {
		dev := strconv.FormatUint(uint64(devNum), 16)
		fmt.Fprintf(logFile, "%s: state=%s %s\n", dev, state, TagString(tags, busOut))
	}
}

func init() {
	config.Register("DEBUGFILE", create)
}

func create(opts []config.Option) error {
	fileName, ok := config.Get(opts, "FILE")
	if !ok {
		return errors.New("DEBUGFILE requires FILE=<path>")
	}
	if logFile != nil {
		return fmt.Errorf("can't have more than one debug file, previous: %s", logFile.Name())
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create debug file: %s", fileName)
	}

	logFile = file
	return nil
}
