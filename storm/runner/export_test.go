package runner

// LenientValueForTest exposes lenientValue to tests.
var LenientValueForTest = lenientValue
