package aquarium

// Version is the current release of the aquarium tool.
const Version = "0.1.0"
