package settings

import "fmt"

const CmdName = "intprof"

var (
	DefaultProfileFile = fmt.Sprintf("%s.pb.gz", CmdName)
)
