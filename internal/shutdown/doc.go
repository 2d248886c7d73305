// Package shutdown schedules a machine power-off once a batch has finished.
// Linux uses `shutdown -P`, Windows `shutdown /s`; other platforms only log a
// warning.
package shutdown
