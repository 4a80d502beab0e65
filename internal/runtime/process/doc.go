// Package process spawns the managed child and owns its lifetime.
//
// Every child is started as the leader of a new process group. The Group
// handle returned alongside the child addresses that whole group, so a
// preemption signal also reaches any processes the child spawned itself.
//
// On Linux and the BSDs the group is a POSIX process group and the signal is
// delivered with kill(-pgid). On Windows the child is created with
// CREATE_NEW_PROCESS_GROUP and receives a CTRL_BREAK_EVENT; console control
// events reach every process attached to the console in that group, but
// processes started detached from the console are not notified.
package process
