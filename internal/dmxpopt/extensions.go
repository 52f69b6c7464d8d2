package dmxpopt

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/runtime/protoimpl"
	"google.golang.org/protobuf/types/descriptorpb"
)

const ProtoPath = "dmxp/options.proto"

const ProtoPackage = "dmxp"

const ProtoSource = `
syntax = "proto3";

package dmxp;

import "google/protobuf/descriptor.proto";

extend google.protobuf.MessageOptions {
  string dmxp_channel = 51000;
  bool dmxp_persistent = 51001;
  uint32 dmxp_buffer_size = 51002;
  bool dmxp_wal_enabled = 51003;
  bool dmxp_swap_enabled = 51004;
  uint32 dmxp_priority = 51005;
}

extend google.protobuf.ServiceOptions {
  repeated string dmxp_channels = 51010;
  uint32 dmxp_timeout_ms = 51011;
  uint32 dmxp_retry_count = 51012;
}

message method {
  extend google.protobuf.MethodOptions {
    string dmxp_channel = 51020;
    uint32 dmxp_timeout_ms = 51021;
    bool dmxp_async = 51022;
  }
}
`

var (
	E_MessageChannel     = newExtension(ScopeMessage, KeyChannel, 51000)
	E_MessagePersistent  = newExtension(ScopeMessage, KeyPersistent, 51001)
	E_MessageBufferSize  = newExtension(ScopeMessage, KeyBufferSize, 51002)
	E_MessageWALEnabled  = newExtension(ScopeMessage, KeyWALEnabled, 51003)
	E_MessageSwapEnabled = newExtension(ScopeMessage, KeySwapEnabled, 51004)
	E_MessagePriority    = newExtension(ScopeMessage, KeyPriority, 51005)

	E_ServiceChannels   = newExtension(ScopeService, KeyChannels, 51010)
	E_ServiceTimeoutMs  = newExtension(ScopeService, KeyTimeoutMs, 51011)
	E_ServiceRetryCount = newExtension(ScopeService, KeyRetryCount, 51012)

	E_MethodChannel   = newExtension(ScopeMethod, KeyChannel, 51020)
	E_MethodTimeoutMs = newExtension(ScopeMethod, KeyTimeoutMs, 51021)
	E_MethodAsync     = newExtension(ScopeMethod, KeyAsync, 51022)
)

// ProtoName is the parenthesized option name that protoc-compatible
// sources use to set key on a declaration of the given scope.
func ProtoName(key Key, scope Scope) string {
	if scope == ScopeMethod {
		return "(" + ProtoPackage + ".method." + key.String() + ")"
	}
	return "(" + ProtoPackage + "." + key.String() + ")"
}

func newExtension(scope Scope, key Key, number protoreflect.FieldNumber) *protoimpl.ExtensionInfo {
	spec := specByKey(key)
	xt := &protoimpl.ExtensionInfo{
		Field:    int32(number),
		Filename: ProtoPath,
	}
	switch scope {
	case ScopeMessage:
		xt.ExtendedType = (*descriptorpb.MessageOptions)(nil)
		xt.Name = ProtoPackage + "." + spec.Name
	case ScopeService:
		xt.ExtendedType = (*descriptorpb.ServiceOptions)(nil)
		xt.Name = ProtoPackage + "." + spec.Name
	case ScopeMethod:
		xt.ExtendedType = (*descriptorpb.MethodOptions)(nil)
		xt.Name = ProtoPackage + ".method." + spec.Name
	default:
		panic(fmt.Sprintf("dmxpopt: no extension for scope %d", scope))
	}
	switch {
	case key == KeyChannels:
		xt.ExtensionType = ([]string)(nil)
		xt.Tag = fmt.Sprintf("bytes,%d,rep,name=%s", number, spec.Name)
	case spec.Type == String:
		xt.ExtensionType = (*string)(nil)
		xt.Tag = fmt.Sprintf("bytes,%d,opt,name=%s", number, spec.Name)
	case spec.Type == Bool:
		xt.ExtensionType = (*bool)(nil)
		xt.Tag = fmt.Sprintf("varint,%d,opt,name=%s", number, spec.Name)
	case spec.Type == Uint32:
		xt.ExtensionType = (*uint32)(nil)
		xt.Tag = fmt.Sprintf("varint,%d,opt,name=%s", number, spec.Name)
	}
	return xt
}

func specByKey(key Key) Spec {
	for _, s := range specs {
		if s.Key == key {
			return s
		}
	}
	panic(fmt.Sprintf("dmxpopt: unknown key %d", key))
}
