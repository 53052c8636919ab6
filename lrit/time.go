/*
NAME
  time.go - CCSDS time conversion.

DESCRIPTION
  UnixTime converts a 7-byte CCSDS time field (reserved byte, u16 days
  since 1958-01-01, u32 milliseconds of day) into a Unix time, per spec
  §6.

AUTHORS
  Grounded on original_source/src/lib/lrit.cc's
  TimeStampHeader::getUnix, including its ccsdsToUnixDaysOffset
  constant.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package lrit

import (
	"encoding/binary"
	"time"
)

// ccsdsToUnixDaysOffset is the day count from the CCSDS epoch
// (1958-01-01) to the Unix epoch (1970-01-01).
const ccsdsToUnixDaysOffset = 4383

// UnixTime converts a 7-byte CCSDS time field (byte 0 reserved, bytes
// 1-2 days since 1958-01-01, bytes 3-6 milliseconds of day) into a
// Unix time. A zero field (both days and millis zero) returns the zero
// time.
func UnixTime(ccsds [7]byte) time.Time {
	days := binary.BigEndian.Uint16(ccsds[1:3])
	millis := binary.BigEndian.Uint32(ccsds[3:7])
	if days == 0 && millis == 0 {
		return time.Time{}
	}
	secs := int64(days-ccsdsToUnixDaysOffset)*86400 + int64(millis/1000)
	nsecs := int64(millis%1000) * int64(time.Millisecond)
	return time.Unix(secs, nsecs).UTC()
}
