package ast

type frameKind int

const (
	messageFrame frameKind = iota
	enumFrame
	serviceFrame
)

// frame is a declaration that has been opened but not yet closed.
type frame struct {
	kind    frameKind
	message *Message
	enum    *Enum
	service *Service
}

// Builder assembles a File one declaration at a time. Open declarations live
// on an explicit stack; Start and End calls must pair up in LIFO order.
//
// Methods that add to an open declaration are no-ops when the top of the
// stack is not of the matching kind.
type Builder struct {
	file   File
	frames []frame
}

func NewBuilder() *Builder {
	return &Builder{file: File{Syntax: DefaultSyntax}}
}

func (b *Builder) SetSyntax(syntax string) {
	b.file.Syntax = syntax
}

func (b *Builder) SetPackage(pkg string) {
	b.file.Package = pkg
}

func (b *Builder) AddImport(path string) {
	b.file.Imports = append(b.file.Imports, path)
}

func (b *Builder) AddFileOption(opt Option) {
	b.file.Options = append(b.file.Options, opt)
}

func (b *Builder) top() *frame {
	if len(b.frames) == 0 {
		return nil
	}
	return &b.frames[len(b.frames)-1]
}

func (b *Builder) pop() frame {
	f := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]
	return f
}

// enclosingMessage returns the innermost open message, if any.
func (b *Builder) enclosingMessage() *Message {
	for i := len(b.frames) - 1; i >= 0; i-- {
		if b.frames[i].kind == messageFrame {
			return b.frames[i].message
		}
	}
	return nil
}

func (b *Builder) currentMessage() *Message {
	if f := b.top(); f != nil && f.kind == messageFrame {
		return f.message
	}
	return nil
}

func (b *Builder) currentEnum() *Enum {
	if f := b.top(); f != nil && f.kind == enumFrame {
		return f.enum
	}
	return nil
}

func (b *Builder) currentService() *Service {
	if f := b.top(); f != nil && f.kind == serviceFrame {
		return f.service
	}
	return nil
}

func (b *Builder) currentMethod() *Method {
	svc := b.currentService()
	if svc == nil || len(svc.Methods) == 0 {
		return nil
	}
	return &svc.Methods[len(svc.Methods)-1]
}

func (b *Builder) StartMessage(name string) {
	b.frames = append(b.frames, frame{kind: messageFrame, message: &Message{Name: name}})
}

// EndMessage closes the open message into its parent message, or into the
// file when no message encloses it.
func (b *Builder) EndMessage() {
	if b.currentMessage() == nil {
		return
	}
	msg := *b.pop().message
	if parent := b.enclosingMessage(); parent != nil {
		parent.Messages = append(parent.Messages, msg)
		return
	}
	b.file.Messages = append(b.file.Messages, msg)
}

func (b *Builder) StartEnum(name string) {
	b.frames = append(b.frames, frame{kind: enumFrame, enum: &Enum{Name: name}})
}

// EndEnum closes the open enum into the innermost open message, or into the
// file.
func (b *Builder) EndEnum() {
	if b.currentEnum() == nil {
		return
	}
	e := *b.pop().enum
	if parent := b.enclosingMessage(); parent != nil {
		parent.Enums = append(parent.Enums, e)
		return
	}
	b.file.Enums = append(b.file.Enums, e)
}

func (b *Builder) StartService(name string) {
	b.frames = append(b.frames, frame{kind: serviceFrame, service: &Service{Name: name}})
}

// EndService closes the open service. Services never nest.
func (b *Builder) EndService() {
	if b.currentService() == nil {
		return
	}
	b.file.Services = append(b.file.Services, *b.pop().service)
}

func (b *Builder) AddField(field Field) {
	if msg := b.currentMessage(); msg != nil {
		msg.Fields = append(msg.Fields, field)
	}
}

func (b *Builder) AddMessageOption(opt Option) {
	if msg := b.currentMessage(); msg != nil {
		msg.Options = append(msg.Options, opt)
	}
}

// MessageChannel returns the open message's binding, creating an empty one
// on first use so callers can fill it in one member at a time.
func (b *Builder) MessageChannel() *ChannelBinding {
	msg := b.currentMessage()
	if msg == nil {
		return nil
	}
	if msg.Channel == nil {
		msg.Channel = &ChannelBinding{}
	}
	return msg.Channel
}

func (b *Builder) AddEnumValue(value EnumValue) {
	if e := b.currentEnum(); e != nil {
		e.Values = append(e.Values, value)
	}
}

func (b *Builder) AddEnumOption(opt Option) {
	if e := b.currentEnum(); e != nil {
		e.Options = append(e.Options, opt)
	}
}

func (b *Builder) AddMethod(method Method) {
	if svc := b.currentService(); svc != nil {
		svc.Methods = append(svc.Methods, method)
	}
}

func (b *Builder) AddServiceOption(opt Option) {
	if svc := b.currentService(); svc != nil {
		svc.Options = append(svc.Options, opt)
	}
}

func (b *Builder) ServiceChannel() *ServiceChannelBinding {
	svc := b.currentService()
	if svc == nil {
		return nil
	}
	if svc.Channel == nil {
		svc.Channel = &ServiceChannelBinding{}
	}
	return svc.Channel
}

// AddMethodOption attaches an option to the most recently added method of
// the open service.
func (b *Builder) AddMethodOption(opt Option) {
	if m := b.currentMethod(); m != nil {
		m.Options = append(m.Options, opt)
	}
}

func (b *Builder) MethodChannel() *MethodChannelBinding {
	m := b.currentMethod()
	if m == nil {
		return nil
	}
	if m.Channel == nil {
		m.Channel = &MethodChannelBinding{}
	}
	return m.Channel
}

func (b *Builder) AddExtension(ext Extension) {
	b.file.Extensions = append(b.file.Extensions, ext)
}

func (b *Builder) AddChannel(ch Channel) {
	b.file.Channels = append(b.file.Channels, ch)
}

// Build finalizes the file. Declarations still open are discarded and the
// builder must not be used afterwards.
func (b *Builder) Build() *File {
	f := b.file
	b.file = File{}
	b.frames = nil
	return &f
}
