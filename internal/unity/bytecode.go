package unity

import (
	"fmt"
	"os"
)

// ModuleMagic identifies a managed bytecode module file.
const ModuleMagic = "ULIL"

const moduleVersion = 1

// Opcode is a managed instruction opcode. Only the opcodes the toolkit
// must understand are modeled; everything else in a real module would be
// opaque to the scanner anyway.
type Opcode byte

const (
	OpNop   Opcode = 0x00
	OpLdcI4 Opcode = 0x20
	OpCall  Opcode = 0x28
	OpRet   Opcode = 0x2A
	OpLdstr Opcode = 0x72
)

// encodedSize is the instruction's on-disk footprint. String operands
// live in the module string heap, so replacing a literal never shifts
// instruction offsets.
func (op Opcode) encodedSize() uint32 {
	switch op {
	case OpNop, OpRet:
		return 1
	case OpLdcI4, OpCall:
		return 5
	case OpLdstr:
		return 6
	}
	return 1
}

// Instruction is one decoded instruction. Offset is the byte offset of
// the instruction within its method body; offsets are monotonic and
// unique per method.
type Instruction struct {
	Offset uint32
	Op     Opcode

	// Str is the literal operand for OpLdstr, Sym the callee for OpCall,
	// Value the immediate for OpLdcI4.
	Str   string
	Sym   string
	Value int32
}

// IsLoadString reports whether the instruction loads a string literal.
func (in *Instruction) IsLoadString() bool {
	return in.Op == OpLdstr
}

// Method is one method body.
type Method struct {
	Name string
	Body []*Instruction
}

// Emit appends an instruction, assigning its offset.
func (m *Method) Emit(op Opcode) *Instruction {
	in := &Instruction{Op: op, Offset: m.nextOffset()}
	m.Body = append(m.Body, in)
	return in
}

// EmitLdstr appends a literal string load.
func (m *Method) EmitLdstr(s string) *Instruction {
	in := m.Emit(OpLdstr)
	in.Str = s
	return in
}

// InstructionAt returns the instruction at the exact byte offset.
func (m *Method) InstructionAt(offset uint32) (*Instruction, bool) {
	for _, in := range m.Body {
		if in.Offset == offset {
			return in, true
		}
	}
	return nil, false
}

func (m *Method) nextOffset() uint32 {
	var off uint32
	for _, in := range m.Body {
		off = in.Offset + in.Op.encodedSize()
	}
	return off
}

// TypeDef is one type declaration. Name is the namespace-qualified name
// for top-level types; nested type full names join with '/'.
type TypeDef struct {
	Name    string
	Methods []*Method
	Nested  []*TypeDef
}

// AddMethod appends an empty method body.
func (t *TypeDef) AddMethod(name string) *Method {
	meth := &Method{Name: name}
	t.Methods = append(t.Methods, meth)
	return meth
}

// AddNested appends a nested type.
func (t *TypeDef) AddNested(name string) *TypeDef {
	nested := &TypeDef{Name: name}
	t.Nested = append(t.Nested, nested)
	return nested
}

// Module is an open managed module.
type Module struct {
	Path  string
	Name  string
	Types []*TypeDef
}

// NewModule creates an empty module bound to path.
func NewModule(path, name string) *Module {
	return &Module{Path: path, Name: name}
}

// AddType appends a top-level type.
func (mod *Module) AddType(name string) *TypeDef {
	t := &TypeDef{Name: name}
	mod.Types = append(mod.Types, t)
	return t
}

// WalkTypes visits every type including nested types, passing the full
// type name ("Ns.Outer/Nested").
func (mod *Module) WalkTypes(visit func(fullName string, t *TypeDef)) {
	var walk func(prefix string, t *TypeDef)
	walk = func(prefix string, t *TypeDef) {
		fullName := t.Name
		if prefix != "" {
			fullName = prefix + "/" + t.Name
		}
		visit(fullName, t)
		for _, n := range t.Nested {
			walk(fullName, n)
		}
	}
	for _, t := range mod.Types {
		walk("", t)
	}
}

// FindMethod resolves a (full type name, method name) pair against the
// live module. Overloads sharing a name are not disambiguated: the first
// body with the name wins. That collision is a known limitation of the
// addressing scheme.
func (mod *Module) FindMethod(typeFullName, methodName string) (*Method, bool) {
	var found *Method
	mod.WalkTypes(func(fullName string, t *TypeDef) {
		if found != nil || fullName != typeFullName {
			return
		}
		for _, meth := range t.Methods {
			if meth.Name == methodName {
				found = meth
				return
			}
		}
	})
	return found, found != nil
}

// OpenModule reads and parses a module from disk. The same representation
// serves read-only scanning and read-write patching; Save persists edits.
func OpenModule(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open module %s: %w", path, err)
	}
	mod, err := ParseModule(data)
	if err != nil {
		return nil, fmt.Errorf("parse module %s: %w", path, err)
	}
	mod.Path = path
	return mod, nil
}

// ParseModule parses module bytes.
func ParseModule(data []byte) (*Module, error) {
	r := newWireReader(data)
	if err := r.expectMagic(ModuleMagic); err != nil {
		return nil, err
	}
	version, err := r.uint32()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != moduleVersion {
		return nil, fmt.Errorf("unsupported module version %d", version)
	}

	mod := &Module{}
	if mod.Name, err = r.string(); err != nil {
		return nil, fmt.Errorf("read module name: %w", err)
	}

	heapCount, err := r.uvarint()
	if err != nil {
		return nil, fmt.Errorf("read string heap: %w", err)
	}
	heap := make([]string, heapCount)
	for i := range heap {
		if heap[i], err = r.string(); err != nil {
			return nil, fmt.Errorf("read string heap entry %d: %w", i, err)
		}
	}

	typeCount, err := r.uvarint()
	if err != nil {
		return nil, fmt.Errorf("read type count: %w", err)
	}
	for i := uint64(0); i < typeCount; i++ {
		t, err := decodeType(r, heap)
		if err != nil {
			return nil, fmt.Errorf("read type %d: %w", i, err)
		}
		mod.Types = append(mod.Types, t)
	}

	return mod, nil
}

// Encode serializes the module, rebuilding the string heap. Each string
// operand gets its own heap slot so editing one literal never aliases
// another.
func (mod *Module) Encode() []byte {
	var heap []string
	var collect func(t *TypeDef)
	collect = func(t *TypeDef) {
		for _, meth := range t.Methods {
			for _, in := range meth.Body {
				switch in.Op {
				case OpLdstr:
					heap = append(heap, in.Str)
				case OpCall:
					heap = append(heap, in.Sym)
				}
			}
		}
		for _, n := range t.Nested {
			collect(n)
		}
	}
	for _, t := range mod.Types {
		collect(t)
	}

	var w wireWriter
	w.raw([]byte(ModuleMagic))
	w.uint32(moduleVersion)
	w.string(mod.Name)
	w.uvarint(uint64(len(heap)))
	for _, s := range heap {
		w.string(s)
	}

	// Token assignment mirrors the heap collection walk.
	token := uint32(0)
	var encode func(t *TypeDef)
	encode = func(t *TypeDef) {
		w.string(t.Name)
		w.uvarint(uint64(len(t.Methods)))
		for _, meth := range t.Methods {
			w.string(meth.Name)
			w.uvarint(uint64(len(meth.Body)))
			for _, in := range meth.Body {
				w.byte(byte(in.Op))
				switch in.Op {
				case OpLdstr:
					w.byte(0) // flags, reserved
					w.uint32(token)
					token++
				case OpCall:
					w.uint32(token)
					token++
				case OpLdcI4:
					w.uint32(uint32(in.Value))
				}
			}
		}
		w.uvarint(uint64(len(t.Nested)))
		for _, n := range t.Nested {
			encode(n)
		}
	}
	w.uvarint(uint64(len(mod.Types)))
	for _, t := range mod.Types {
		encode(t)
	}

	return w.data()
}

// Save persists the module back to its path atomically.
func (mod *Module) Save() error {
	return writeFileAtomic(mod.Path, mod.Encode())
}

func decodeType(r *wireReader, heap []string) (*TypeDef, error) {
	name, err := r.string()
	if err != nil {
		return nil, err
	}
	t := &TypeDef{Name: name}

	methodCount, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < methodCount; i++ {
		meth, err := decodeMethod(r, heap)
		if err != nil {
			return nil, fmt.Errorf("method %d of %s: %w", i, name, err)
		}
		t.Methods = append(t.Methods, meth)
	}

	nestedCount, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < nestedCount; i++ {
		nested, err := decodeType(r, heap)
		if err != nil {
			return nil, err
		}
		t.Nested = append(t.Nested, nested)
	}

	return t, nil
}

func decodeMethod(r *wireReader, heap []string) (*Method, error) {
	name, err := r.string()
	if err != nil {
		return nil, err
	}
	meth := &Method{Name: name}

	instrCount, err := r.uvarint()
	if err != nil {
		return nil, err
	}
	var offset uint32
	for i := uint64(0); i < instrCount; i++ {
		opByte, err := r.byte()
		if err != nil {
			return nil, err
		}
		in := &Instruction{Op: Opcode(opByte), Offset: offset}

		switch in.Op {
		case OpLdstr:
			if _, err := r.byte(); err != nil { // flags
				return nil, err
			}
			token, err := r.uint32()
			if err != nil {
				return nil, err
			}
			if token >= uint32(len(heap)) {
				return nil, fmt.Errorf("string token %d out of range", token)
			}
			in.Str = heap[token]
		case OpCall:
			token, err := r.uint32()
			if err != nil {
				return nil, err
			}
			if token >= uint32(len(heap)) {
				return nil, fmt.Errorf("call token %d out of range", token)
			}
			in.Sym = heap[token]
		case OpLdcI4:
			v, err := r.uint32()
			if err != nil {
				return nil, err
			}
			in.Value = int32(v)
		case OpNop, OpRet:
		default:
			return nil, fmt.Errorf("unknown opcode 0x%02x at offset %d", opByte, offset)
		}

		meth.Body = append(meth.Body, in)
		offset += in.Op.encodedSize()
	}

	return meth, nil
}
