/*
Package ports defines the interfaces between bpmngen components and their
storage adapters. Reusable contract tests for adapter authors live in ports/tests.
*/
package ports
