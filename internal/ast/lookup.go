package ast

// FindMessage returns the top-level message with the given name.
func (f *File) FindMessage(name string) (*Message, bool) {
	for i := range f.Messages {
		if f.Messages[i].Name == name {
			return &f.Messages[i], true
		}
	}
	return nil, false
}

func (f *File) FindService(name string) (*Service, bool) {
	for i := range f.Services {
		if f.Services[i].Name == name {
			return &f.Services[i], true
		}
	}
	return nil, false
}

func (f *File) FindEnum(name string) (*Enum, bool) {
	for i := range f.Enums {
		if f.Enums[i].Name == name {
			return &f.Enums[i], true
		}
	}
	return nil, false
}

// ChannelMessages returns the top-level messages bound to a channel name.
func (f *File) ChannelMessages() []*Message {
	var out []*Message
	for i := range f.Messages {
		if _, ok := f.Messages[i].ChannelName(); ok {
			out = append(out, &f.Messages[i])
		}
	}
	return out
}

// ChannelServices returns the services that declare at least one channel.
func (f *File) ChannelServices() []*Service {
	var out []*Service
	for i := range f.Services {
		if ch := f.Services[i].Channel; ch != nil && len(ch.Channels) > 0 {
			out = append(out, &f.Services[i])
		}
	}
	return out
}

func (m *Message) ChannelName() (string, bool) {
	if m.Channel == nil || m.Channel.Channel == nil {
		return "", false
	}
	return *m.Channel.Channel, true
}

func Ptr[T any](v T) *T {
	return &v
}
