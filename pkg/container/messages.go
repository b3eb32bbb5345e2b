package container

import (
	"fmt"
	"strings"
)

// ReadMessages reads the localized message table that opens every container
// and returns the values selected for locale. A block applies when its locale
// name is empty or occurs in locale; later blocks override earlier ones
// except where they leave a value empty.
func (e *Extractor) ReadMessages(locale string) (map[string]string, error) {
	localeCount, err := e.ReadUint()
	if err != nil {
		return nil, err
	}
	if localeCount == 0 {
		return nil, e.fail(fmt.Errorf("%w: message table has no locales", ErrIntegrity))
	}

	propertyCount, err := e.ReadUint()
	if err != nil {
		return nil, err
	}
	if propertyCount == 0 {
		return nil, e.fail(fmt.Errorf("%w: message table has no properties", ErrIntegrity))
	}

	// Counts come from the container; storage grows with the data actually
	// read.
	var names []string
	for i := uint32(0); i < propertyCount; i++ {
		name, err := e.ReadString(true)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	table := make(map[string]string)
	for l := uint32(0); l < localeCount; l++ {
		name, err := e.ReadString(true)
		if err != nil {
			return nil, err
		}
		matches := name == "" || strings.Contains(locale, name)
		e.logger.Trace("🌐 Message block", "locale", name, "selected", matches)

		for i := range names {
			value, err := e.ReadString(true)
			if err != nil {
				return nil, err
			}
			if matches && value != "" {
				table[names[i]] = value
			}
		}
	}
	return table, nil
}
