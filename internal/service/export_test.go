package service

// JobGuard exposes jobGuard to the service_test package.
type JobGuard = jobGuard
