package ast

// Clone returns a deep copy of the file. Passes that rewrite the tree work on
// a clone so a finalized File is never mutated.
func (f *File) Clone() *File {
	out := &File{
		Syntax:  f.Syntax,
		Package: f.Package,
		Imports: cloneSlice(f.Imports),
		Options: cloneOptions(f.Options),
	}
	for _, m := range f.Messages {
		out.Messages = append(out.Messages, m.Clone())
	}
	for _, s := range f.Services {
		out.Services = append(out.Services, s.clone())
	}
	for _, e := range f.Enums {
		out.Enums = append(out.Enums, e.clone())
	}
	for _, x := range f.Extensions {
		x.Type = x.Type.Clone()
		x.Options = cloneOptions(x.Options)
		out.Extensions = append(out.Extensions, x)
	}
	for _, c := range f.Channels {
		c.Options = ChannelOptions{
			BufferSize:  clonePtr(c.Options.BufferSize),
			Persistent:  clonePtr(c.Options.Persistent),
			WALEnabled:  clonePtr(c.Options.WALEnabled),
			SwapEnabled: clonePtr(c.Options.SwapEnabled),
			Priority:    clonePtr(c.Options.Priority),
			TimeoutMs:   clonePtr(c.Options.TimeoutMs),
		}
		out.Channels = append(out.Channels, c)
	}
	return out
}

func (m Message) Clone() Message {
	out := Message{Name: m.Name, Options: cloneOptions(m.Options)}
	for _, f := range m.Fields {
		f.Type = f.Type.Clone()
		f.Options = cloneOptions(f.Options)
		f.Default = clonePtr(f.Default)
		out.Fields = append(out.Fields, f)
	}
	for _, n := range m.Messages {
		out.Messages = append(out.Messages, n.Clone())
	}
	for _, e := range m.Enums {
		out.Enums = append(out.Enums, e.clone())
	}
	if m.Channel != nil {
		out.Channel = &ChannelBinding{
			Channel:     clonePtr(m.Channel.Channel),
			Persistent:  clonePtr(m.Channel.Persistent),
			BufferSize:  clonePtr(m.Channel.BufferSize),
			WALEnabled:  clonePtr(m.Channel.WALEnabled),
			SwapEnabled: clonePtr(m.Channel.SwapEnabled),
			Priority:    clonePtr(m.Channel.Priority),
		}
	}
	return out
}

func (t FieldType) Clone() FieldType {
	out := FieldType{Kind: t.Kind, Name: t.Name}
	if t.Key != nil {
		k := t.Key.Clone()
		out.Key = &k
	}
	if t.Value != nil {
		v := t.Value.Clone()
		out.Value = &v
	}
	return out
}

func (s Service) clone() Service {
	out := Service{Name: s.Name, Options: cloneOptions(s.Options)}
	for _, m := range s.Methods {
		m.Options = cloneOptions(m.Options)
		if m.Channel != nil {
			m.Channel = &MethodChannelBinding{
				Channel:   clonePtr(m.Channel.Channel),
				TimeoutMs: clonePtr(m.Channel.TimeoutMs),
				Async:     clonePtr(m.Channel.Async),
			}
		}
		out.Methods = append(out.Methods, m)
	}
	if s.Channel != nil {
		out.Channel = &ServiceChannelBinding{
			Channels:   cloneSlice(s.Channel.Channels),
			TimeoutMs:  clonePtr(s.Channel.TimeoutMs),
			RetryCount: clonePtr(s.Channel.RetryCount),
		}
	}
	return out
}

func (e Enum) clone() Enum {
	out := Enum{Name: e.Name, Options: cloneOptions(e.Options)}
	for _, v := range e.Values {
		v.Options = cloneOptions(v.Options)
		out.Values = append(out.Values, v)
	}
	return out
}

func cloneOptions(opts []Option) []Option {
	return cloneSlice(opts)
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append([]T(nil), in...)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
