package container

import (
	"fmt"

	"github.com/provide-io/jlaunch/pkg/javaver"
)

// Properties are the launcher settings stored after the message table.
type Properties struct {
	JVMArgs      []string
	AppArgs      []string
	MainClass    string
	TestClass    string
	Rules        []javaver.Rule
	BundledCount uint32
	BundledSize  uint64
}

// ReadStringList reads a count followed by that many UTF-16 strings.
func (e *Extractor) ReadStringList() ([]string, error) {
	count, err := e.ReadUint()
	if err != nil {
		return nil, err
	}
	var list []string
	for i := uint32(0); i < count; i++ {
		s, err := e.ReadString(true)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, nil
}

func (e *Extractor) readVersion(what string) (javaver.Version, error) {
	s, err := e.ReadString(true)
	if err != nil {
		return javaver.Version{}, err
	}
	v, ok := javaver.Parse(s)
	if !ok {
		return javaver.Version{}, e.fail(fmt.Errorf("%w: invalid %s version %q", ErrIntegrity, what, s))
	}
	return v, nil
}

// ReadProperties reads the launcher properties block.
func (e *Extractor) ReadProperties() (*Properties, error) {
	var (
		p   Properties
		err error
	)

	if p.JVMArgs, err = e.ReadStringList(); err != nil {
		return nil, err
	}
	if p.AppArgs, err = e.ReadStringList(); err != nil {
		return nil, err
	}
	if p.MainClass, err = e.ReadString(true); err != nil {
		return nil, err
	}
	if p.TestClass, err = e.ReadString(true); err != nil {
		return nil, err
	}

	ruleCount, err := e.ReadUint()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < ruleCount; i++ {
		var r javaver.Rule
		if r.Min, err = e.readVersion("minimum"); err != nil {
			return nil, err
		}
		if r.Max, err = e.readVersion("maximum"); err != nil {
			return nil, err
		}
		if r.Vendor, err = e.ReadString(true); err != nil {
			return nil, err
		}
		if r.OSName, err = e.ReadString(false); err != nil {
			return nil, err
		}
		if r.OSArch, err = e.ReadString(false); err != nil {
			return nil, err
		}
		p.Rules = append(p.Rules, r)
	}

	if p.BundledCount, err = e.ReadUint(); err != nil {
		return nil, err
	}
	low, high, err := e.ReadSize()
	if err != nil {
		return nil, err
	}
	p.BundledSize = Size64(low, high)

	e.logger.Debug("📋 Launcher properties",
		"main_class", p.MainClass,
		"test_class", p.TestClass,
		"rules", len(p.Rules),
		"bundled_files", p.BundledCount,
		"bundled_size", p.BundledSize)
	return &p, nil
}
