package spawner

import "syscall"

// syscallSig0 is the zero-signal used to probe whether a pid is still
// alive without actually delivering a signal to it.
var syscallSig0 = syscall.Signal(0)
