// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package eval

import (
	"os"

	"github.com/chili-lang/chili/chilierr"
	"github.com/chili-lang/chili/engine"
	"github.com/chili-lang/chili/value"
	"github.com/chili-lang/chili/wire"
)

// registerHandleBuiltins adds the connection-handle builtins to reg.
func registerHandleBuiltins(reg map[string]*value.Fn) {
	reg["connect"] = impureFn("connect", 3, builtinConnect)
	reg["disconnect"] = impureFn("disconnect", 1, builtinDisconnect)
	reg["set_callback"] = impureFn("set_callback", 2, builtinSetCallback)
	reg["get_callback"] = impureFn("get_callback", 1, builtinGetCallback)
}

// builtinConnect opens an outbound connection to addr ("host:port"),
// authenticating as user, and registers the resulting handle . An empty password falls back to CHILI_IPC_TOKEN,
// the same env var the server side checks . The
// returned I64 is the handle id; calling it as a function runs
// call-dispatch rule 3.
func builtinConnect(state, _ any, args []value.Obj) (value.Obj, error) {
	addr, ok := args[0].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 0, Got: args[0].Code().String()}
	}
	user, ok := args[1].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 1, Got: args[1].Code().String()}
	}
	password, ok := args[2].(value.String)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "string", Pos: 2, Got: args[2].Code().String()}
	}
	pass := string(password)
	if pass == "" {
		pass = os.Getenv("CHILI_IPC_TOKEN")
	}
	cc, err := wire.Dial(string(addr), string(user), pass, wire.ClientPrefersV9)
	if err != nil {
		return nil, err
	}
	h := &engine.Handle{
		Addr: string(addr),
		User: string(user),
		Outbound: true,
		Connected: true,
		RoundTrip: cc.RoundTrip,
		Close: cc.Close,
	}
	id := asEngine(state).SetHandle(h)
	return value.I64(id), nil
}

// builtinDisconnect closes the connection behind h, if any, and
// removes it from the handle table.
func builtinDisconnect(state, _ any, args []value.Obj) (value.Obj, error) {
	id, ok := value.AsI64(args[0])
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "numeric", Pos: 0, Got: args[0].Code().String()}
	}
	st := asEngine(state)
	if h, ok := st.GetHandle(id); ok && h.Close != nil {
		h.Close()
	}
	if err := st.DisconnectHandle(id); err != nil {
		return nil, err
	}
	return value.Null{}, nil
}

// builtinSetCallback registers fn to run when handle h disconnects
//.
func builtinSetCallback(state, _ any, args []value.Obj) (value.Obj, error) {
	id, ok := value.AsI64(args[0])
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "numeric", Pos: 0, Got: args[0].Code().String()}
	}
	fn, ok := args[1].(*value.Fn)
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "fn", Pos: 1, Got: args[1].Code().String()}
	}
	asEngine(state).SetCallback(id, fn)
	return value.Null{}, nil
}

// builtinGetCallback returns the disconnect callback registered for
// handle h, or Null if none is set.
func builtinGetCallback(state, _ any, args []value.Obj) (value.Obj, error) {
	id, ok := value.AsI64(args[0])
	if !ok {
		return nil, &chilierr.MismatchedArgTypeErr{Want: "numeric", Pos: 0, Got: args[0].Code().String()}
	}
	fn, ok := asEngine(state).GetCallback(id)
	if !ok {
		return value.Null{}, nil
	}
	return fn, nil
}
