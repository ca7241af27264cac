package session

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/userdata-go/internal/model"
	"github.com/mcoot/userdata-go/internal/rpc"
)

type fakeCall struct {
	method string
	args   []any
	kwargs map[string]any
	reply  rpc.ReplyFunc
}

func (c *fakeCall) respond(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	c.reply(rpc.Reply{Result: data})
}

func (c *fakeCall) fail(msg string) {
	c.reply(rpc.Reply{Err: &rpc.RemoteError{Message: msg}})
}

type fakeCaller struct {
	calls []*fakeCall
}

func (f *fakeCaller) Call(method string, args []any, kwargs map[string]any, reply rpc.ReplyFunc) {
	f.calls = append(f.calls, &fakeCall{method: method, args: args, kwargs: kwargs, reply: reply})
}

func (f *fakeCaller) methods() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.method
	}
	return out
}

func (f *fakeCaller) count(method string) int {
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

// last returns the most recent call to method, panicking when there is none
// so a missing call fails loudly.
func (f *fakeCaller) last(method string) *fakeCall {
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].method == method {
			return f.calls[i]
		}
	}
	panic(fmt.Sprintf("no call to %s in %v", method, f.methods()))
}

type fakeView struct {
	events        []string
	form          LoginForm
	name          string
	players       []model.PlayerRecord
	selection     Selection
	selectEnabled bool
	connected     bool
	alerts        []string
	fatal         string
	hidden        bool
}

func (v *fakeView) record(e string) { v.events = append(v.events, e) }

func (v *fakeView) ShowLogin(form LoginForm) { v.form = form; v.record("login") }
func (v *fakeView) FocusName()               { v.record("focus") }
func (v *fakeView) SetName(name string)      { v.name = name; v.record("name:" + name) }
func (v *fakeView) ClearPassword()           { v.record("clear-password") }
func (v *fakeView) ShowPlayers(players []model.PlayerRecord, sel Selection) {
	v.players = players
	v.selection = sel
	v.record("players")
}
func (v *fakeView) SetSelectEnabled(enabled bool) { v.selectEnabled = enabled }
func (v *fakeView) SetConnected(connected bool)   { v.connected = connected }
func (v *fakeView) Alert(message string)          { v.alerts = append(v.alerts, message) }
func (v *fakeView) Fatal(message string)          { v.fatal = message }
func (v *fakeView) Hide()                         { v.hidden = true; v.record("hide") }

type fakeParent struct {
	messages []*string
}

func (p *fakeParent) Notify(gcid *string) {
	p.messages = append(p.messages, gcid)
}
