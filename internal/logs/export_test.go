package logs

// Exported for white-box tests.
var NewBuffer = newBuffer
