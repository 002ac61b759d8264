// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create a table for ledger events
const eventTableSchema = `
create table if not exists event (
	seq integer primary key,
	batchTime integer,
	txID blob(32),
	txOrigin blob(20),
	address blob(20),
	name text,
	depositID integer,
	account blob(20),
	data blob
);

CREATE INDEX if not exists eventTimeIndex on event(batchTime);
CREATE INDEX if not exists eventAddressIndex on event(address, name);
CREATE INDEX if not exists eventDepositIndex on event(depositID);
CREATE INDEX if not exists eventAccountIndex on event(account);
`
