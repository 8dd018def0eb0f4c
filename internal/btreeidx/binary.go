package btreeidx

import "encoding/binary"

var be = binary.BigEndian
