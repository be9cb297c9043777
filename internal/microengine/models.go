/*
 * microsim360 - model variants.
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

package microengine

import (
	"fmt"

	"github.com/rcornwell/microsim360/internal/channel"
	"github.com/rcornwell/microsim360/internal/localstore"
	"github.com/rcornwell/microsim360/internal/store"
)

// Model names accepted by the CPU MODEL= configuration directive.
const (
	Model2030 = "2030"
	Model2050 = "2050"
	Model2065 = "2065"
)

// modelStoreSize is each model's architected main-store ceiling. 2030 is
// the narrowest; 2050/2065 differ from 2030 mainly in storage capacity,
// instruction-set extensions (floating point) and internal timing, not
// in the fundamental per-cycle bus/tag handshake, so all three models
// share this package's Engine/Table machinery rather than needing
// independent ROS tables.
var modelStoreSize = map[string]uint32{
	Model2030: 64 * 1024,
	Model2050: 512 * 1024,
	Model2065: 1024 * 1024,
}

// NewModel constructs an engine for the named model, selecting its
// representative micro-program and default store size.
func NewModel(name string, ch *channel.Controller) (*Engine, error) {
	size, ok := modelStoreSize[name]
	if !ok {
		return nil, fmt.Errorf("microengine: unknown model %q", name)
	}
	st := store.New(size)
	ls := localstore.New(localstore.Size)

	var table Table
	switch name {
	case Model2030, Model2050, Model2065:
		table = BuildTable2030()
	}
	return New(table, st, ls, ch), nil
}
