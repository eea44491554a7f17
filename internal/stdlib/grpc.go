package stdlib

import (
	"context"
	"encoding/json"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"github.com/jhump/protoreflect/dynamic/grpcdynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

const (
	grpcConnTag  = "grpc.conn"
	grpcProtoTag = "grpc.proto"
)

type protoSet struct {
	files []*desc.FileDescriptor
}

func (p *protoSet) findMethod(fullName string) *desc.MethodDescriptor {
	for _, f := range p.files {
		for _, svc := range f.GetServices() {
			for _, m := range svc.GetMethods() {
				if svc.GetFullyQualifiedName()+"."+m.GetName() == fullName {
					return m
				}
			}
		}
	}
	return nil
}

// InstallGRPC registers the grpc dial/load_proto/invoke/close functions
// as flat globals, using jhump/protoreflect's dynamic message support
// in place of generated stubs, since this language has no
// code-generation step of its own.
func InstallGRPC(env *objects.Table, h objects.Host) {
	register(env, h, "grpc_dial", grpcDialFn)
	register(env, h, "grpc_load_proto", grpcLoadProtoFn)
	register(env, h, "grpc_invoke", grpcInvokeFn)
	register(env, h, "grpc_close", grpcCloseFn)
}

func grpcDialFn(h objects.Host, argc int) (value.Value, error) {
	addr, ok := argString(h, 0)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("grpc_dial expects an address")
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("grpc_dial: %v", err)
	}
	return value.FromObject(h.NewUserData(grpcConnTag, conn)), nil
}

// grpcLoadProtoFn parses one or more .proto files (by filesystem path,
// relative to the working directory) into descriptors usable for
// dynamic message construction, mirroring grpcLoadProto's role of
// making a schema available before grpcInvoke can encode a request.
func grpcLoadProtoFn(h objects.Host, argc int) (value.Value, error) {
	if argc < 1 {
		return value.Nil(), h.RuntimeErrorf("grpc_load_proto expects one or more paths")
	}
	paths := make([]string, 0, argc)
	for i := 0; i < argc; i++ {
		p, ok := argString(h, i)
		if !ok {
			return value.Nil(), h.RuntimeErrorf("grpc_load_proto expects string paths")
		}
		paths = append(paths, p)
	}
	parser := protoparse.Parser{ImportPaths: []string{"."}}
	fds, err := parser.ParseFiles(paths...)
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("grpc_load_proto: %v", err)
	}
	return value.FromObject(h.NewUserData(grpcProtoTag, &protoSet{files: fds})), nil
}

// grpcInvokeFn calls conn.method(jsonRequest) and returns the
// response converted to a Value by way of its JSON encoding (a table
// for a message), using dynamic.Message so no
// generated Go struct for the service is required.
func grpcInvokeFn(h objects.Host, argc int) (value.Value, error) {
	if argc < 4 {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke expects (conn, protoset, method, json_request)")
	}
	connVal, protoVal := h.Arg(0), h.Arg(1)
	method, ok := argString(h, 2)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke expects a string method name")
	}
	reqJSON, ok := argString(h, 3)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke expects a JSON-encoded request string")
	}

	conn, ok := asUserData(connVal, grpcConnTag)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke expects a grpc connection")
	}
	ps, ok := asUserData(protoVal, grpcProtoTag)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke expects a loaded proto set")
	}
	set := ps.(*protoSet)
	md := set.findMethod(method)
	if md == nil {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke: method %q not found", method)
	}

	req := dynamic.NewMessage(md.GetInputType())
	if err := req.UnmarshalJSON([]byte(reqJSON)); err != nil {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke: decoding request: %v", err)
	}

	stub := grpcdynamic.NewStub(conn.(*grpc.ClientConn))
	resp, err := stub.InvokeRpc(context.Background(), md, req)
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke: %v", err)
	}

	dresp, err := dynamic.AsDynamicMessage(resp)
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke: %v", err)
	}
	out, err := dresp.MarshalJSON()
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke: encoding response: %v", err)
	}
	var asGo interface{}
	if err := json.Unmarshal(out, &asGo); err != nil {
		return value.Nil(), h.RuntimeErrorf("grpc_invoke: decoding response: %v", err)
	}
	return goToValue(h, asGo), nil
}

func grpcCloseFn(h objects.Host, argc int) (value.Value, error) {
	conn, ok := asUserData(h.Arg(0), grpcConnTag)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("grpc_close expects a grpc connection")
	}
	if err := conn.(*grpc.ClientConn).Close(); err != nil {
		return value.Nil(), h.RuntimeErrorf("grpc_close: %v", err)
	}
	return value.Nil(), nil
}

func asUserData(v value.Value, tag string) (interface{}, bool) {
	if !v.IsObjectKind(value.KindUserData) {
		return nil, false
	}
	ud := v.AsObject().(*objects.UserData)
	if ud.Tag != tag {
		return nil, false
	}
	return ud.Data, true
}
