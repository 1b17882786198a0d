// Package notifier publishes the statewide projection summary.
//
// A dry-run notifier prints the message that would be posted. The Twitter
// notifier posts it through the v1.1 statuses API using OAuth1 credentials
// read from the environment.
package notifier
