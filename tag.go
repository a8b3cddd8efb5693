package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// TagName is the struct tag carrying member context.
const TagName = "wire"

// ParseTag parses a wire struct tag value into member inputs.
//
// Grammar, comma separated:
//
//	ascii | utf8 | utf16 | utf32
//	dontterminate
//	fixed=N
//	sendsize=byte|int32|ushort[:adjust]
//	reverse
//	enumstring
func ParseTag(name, tag string) (Member, error) {
	m := Member{Name: name}
	if strings.TrimSpace(tag) == "" {
		return m, nil
	}

	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		key, val, hasVal := strings.Cut(part, "=")

		switch {
		case part == "":
			continue
		case IsValidCharsetName(Charset(key)) && !hasVal:
			m.Encodings = append(m.Encodings, validCharsets[Charset(key)])
		case key == "dontterminate" && !hasVal:
			m.DontTerminate = true
		case key == "reverse" && !hasVal:
			m.Reverse = true
		case key == "enumstring" && !hasVal:
			m.EnumString = true
		case key == "fixed" && hasVal:
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return m, fmt.Errorf("%w: member %s: fixed=%q", ErrInvalidTag, name, val)
			}
			m.FixedSize = n
		case key == "sendsize" && hasVal:
			width, adjust, _ := strings.Cut(val, ":")
			s, ok := ParseSizeType(width)
			if !ok {
				return m, fmt.Errorf("%w: member %s: sendsize=%q", ErrInvalidTag, name, val)
			}
			m.SendSize = true
			m.SizeWidth = s
			if adjust != "" {
				n, err := strconv.Atoi(adjust)
				if err != nil {
					return m, fmt.Errorf("%w: member %s: sendsize adjust %q", ErrInvalidTag, name, adjust)
				}
				m.SizeAdjust = n
			}
		default:
			return m, fmt.Errorf("%w: member %s: %q", ErrInvalidTag, name, part)
		}
	}

	return m, nil
}
