// Package bookstore defines the contract the workload driver exercises.
//
// The service is split into two capabilities that a single implementation may
// satisfy at once:
//   - [StockManager]: inventory administration (list, add books, add copies)
//   - [BookStore]: the customer-facing storefront (editor picks, purchases)
//
// Service-side rejections are reported as [*Error] values. The workload
// engine treats any [*Error] as a recoverable interaction failure.
//
// [MemStore] is an in-memory implementation of both capabilities used for
// local runs and tests. Remote stores are reached through the httpproxy
// sub-package.
package bookstore
