/*
 * microsim360 - configuration file parser.
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

// Package configparser reads the line-oriented configuration grammar that
// wires up the CPU model, channels, devices and logging before the
// simulator starts:
//
//	<line>    ::= <directive> <whitespace> <options>
//	<options> ::= *(<option> *<whitespace>)
//	<option>  ::= <name> ['=' <quoteopt>] *(',' <string>)
//	<quoteopt> ::= <string> | '"' *(<letter> | <whitespace>) '"'
//
// e.g. "CPU MODEL=2030 MEM=65536", "DEV ADDR=0C0 TYPE=1443 FILE=line.txt",
// "LOG FILE=trace.log LEVEL=TRACE,DEVICE". '#' starts a line comment.
package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// Option is one parsed name[=value][,value...] clause.
type Option struct {
	Name     string
	EqualOpt string
	Value    []*string
}

// Get returns the EqualOpt value of the first option named name, case
// insensitive, and whether it was present.
func Get(opts []Option, name string) (string, bool) {
	for _, o := range opts {
		if strings.EqualFold(o.Name, name) {
			return o.EqualOpt, true
		}
	}
	return "", false
}

type optionLine struct {
	line string
	pos  int
}

type directiveDef struct {
	create func([]Option) error
}

var directives = map[string]directiveDef{}

var lineNumber int

// Register binds a top-level configuration keyword (CPU, DEV, LOG, ...) to
// a handler invoked with that line's parsed options.
func Register(keyword string, fn func([]Option) error) {
	directives[strings.ToUpper(keyword)] = directiveDef{create: fn}
}

// LoadConfigFile reads and applies every directive in name, in order.
func LoadConfigFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	lineNumber = 0
	reader := bufio.NewReader(file)
	for {
		line := optionLine{}
		line.line, err = reader.ReadString('\n')
		lineNumber++
		if len(line.line) == 0 && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := line.parseLine(); err != nil {
			return err
		}
	}
	return nil
}

func (line *optionLine) parseLine() error {
	keyword := line.parseKeyword()
	if keyword == "" {
		return nil
	}

	directive, ok := directives[keyword]
	if !ok {
		return fmt.Errorf("no directive %s registered, line: %d", keyword, lineNumber)
	}

	options, err := line.parseOptions()
	if err != nil {
		return err
	}
	return directive.create(options)
}

func (line *optionLine) skipSpace() {
	for line.pos < len(line.line) && unicode.IsSpace(rune(line.line[line.pos])) {
		line.pos++
	}
}

func (line *optionLine) isEOL() bool {
	if line.pos >= len(line.line) {
		return true
	}
	return line.line[line.pos] == '#'
}

func (line *optionLine) getNext(inQuote bool) byte {
	line.pos++
	if line.isEOL() {
		return 0
	}
	by := line.line[line.pos]
	if unicode.IsLetter(rune(by)) || unicode.IsNumber(rune(by)) || inQuote {
		return by
	}
	return 0
}

func (line *optionLine) getPeek() byte {
	if (line.pos + 1) >= len(line.line) {
		return 0
	}
	return line.line[line.pos+1]
}

// parseKeyword reads the directive name at the start of a line, e.g. CPU,
// DEV, LOG.
func (line *optionLine) parseKeyword() string {
	line.skipSpace()
	if line.isEOL() {
		return ""
	}

	keyword := ""
	for !line.isEOL() {
		by := line.line[line.pos]
		if unicode.IsLetter(rune(by)) || unicode.IsNumber(rune(by)) {
			keyword += string([]byte{by})
			line.pos++
			continue
		}
		break
	}
	return strings.ToUpper(keyword)
}

func (line *optionLine) parseQuoteString() (string, bool) {
	inQuote := false
	value := ""

	if line.getPeek() == '"' {
		inQuote = true
		_ = line.getNext(true)
	}

	for {
		by := line.getNext(true)
		if by == '"' && inQuote {
			by = line.getNext(inQuote)
			if by != '"' {
				return value, true
			}
		}

		space := unicode.IsSpace(rune(by))
		if !inQuote && (space || by == 0 || by == ',') {
			return value, true
		}

		value += string(by)
		if line.isEOL() {
			return value, !inQuote
		}
	}
}

func (line *optionLine) getName() (string, error) {
	if line.isEOL() {
		return "", nil
	}

	by := line.line[line.pos]
	if !unicode.IsLetter(rune(by)) {
		if !line.isEOL() {
			return "", fmt.Errorf("invalid option encountered line: %d [%d]", lineNumber, line.pos)
		}
		return "", nil
	}

	value := ""
	for {
		value += string([]byte{by})
		by = line.getNext(false)
		if by == 0 {
			break
		}
	}
	return value, nil
}

func (line *optionLine) parseOption() (*Option, error) {
	line.skipSpace()

	value, err := line.getName()
	if value == "" {
		return nil, err
	}

	option := Option{Name: value}
	if line.isEOL() {
		return &option, nil
	}

	if line.line[line.pos] == '=' {
		v, ok := line.parseQuoteString()
		if !ok {
			return nil, fmt.Errorf("invalid quoted string line: %d [%d]", lineNumber, line.pos)
		}
		option.EqualOpt = v
	}

	line.skipSpace()
	for !line.isEOL() && line.line[line.pos] == ',' {
		line.pos++
		line.skipSpace()
		v, err := line.getName()
		if err != nil {
			return nil, err
		}
		if v != "" {
			option.Value = append(option.Value, &v)
		}
		line.skipSpace()
	}

	return &option, nil
}

func (line *optionLine) parseOptions() ([]Option, error) {
	options := []Option{}
	for {
		option, err := line.parseOption()
		if err != nil {
			return nil, err
		}
		if option == nil {
			break
		}
		options = append(options, *option)
	}
	return options, nil
}
